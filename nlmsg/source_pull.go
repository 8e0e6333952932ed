//go:build !async

package nlmsg

// SourceMode names the Source implementation compiled in.
const SourceMode = "pull"

// NewSource returns the blocking iterator over rx.
func NewSource(rx Receiver, _ int) Source {
	return NewIter(rx)
}
