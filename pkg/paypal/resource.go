package paypal

// Resource is implemented by decoded values that represent a remote PayPal
// resource. The dispatcher attaches the response's debug id to them.
type Resource interface {
	SetDebugID(id string)
	DebugID() string
}

// ResourceBase can be embedded in resource types to satisfy Resource.
type ResourceBase struct {
	debugID string
}

func (r *ResourceBase) SetDebugID(id string) { r.debugID = id }
func (r *ResourceBase) DebugID() string      { return r.debugID }
