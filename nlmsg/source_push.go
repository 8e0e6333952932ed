//go:build async

package nlmsg

// SourceMode names the Source implementation compiled in.
const SourceMode = "push"

// NewSource returns the asynchronous stream over rx with the given backlog.
func NewSource(rx Receiver, backlog int) Source {
	return NewStream(rx, backlog)
}
