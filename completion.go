package textsplit

// Completion is the normalized form of an animation-completion signal
// handed back by the caller's animation hook. Await blocks until the
// animation settles and returns nil on success or the animation's error
// on rejection.
//
// Callers rarely implement this themselves: Normalize converts the
// shapes animation engines actually produce — error channels, bare done
// channels, wait functions, lists of any of these — into a Completion
// once, at the collaborator boundary, keeping the conversion out of the
// engine's control flow.
type Completion interface {
	Await() error
}

// Normalize converts v into a Completion by capability:
//
//	nil            → already complete
//	Completion     → itself
//	<-chan error   → first received value (closed channel counts as success)
//	<-chan struct{}→ completes when closed
//	func() error   → completes when the call returns
//	[]any          → all elements, normalized recursively; first error wins
//
// Anything else exposes no completion handle and is treated as already
// complete; the mismatch is traced.
func Normalize(v any) Completion {
	switch s := v.(type) {
	case nil:
		return completed{}
	case Completion:
		return s
	case <-chan error:
		return errChan(s)
	case chan error:
		return errChan(s)
	case <-chan struct{}:
		return doneChan(s)
	case chan struct{}:
		return doneChan(s)
	case func() error:
		return waitFunc(s)
	case []any:
		group := make(completionGroup, 0, len(s))
		for _, member := range s {
			group = append(group, Normalize(member))
		}
		return group
	}
	tracer().Infof("value of type %T exposes no completion handle", v)
	return completed{}
}

// All combines several completions; Await waits for every one and
// returns the first error encountered.
func All(signals ...Completion) Completion {
	return completionGroup(signals)
}

type completed struct{}

func (completed) Await() error { return nil }

type errChan <-chan error

func (c errChan) Await() error {
	err, ok := <-c
	if !ok {
		return nil
	}
	return err
}

type doneChan <-chan struct{}

func (c doneChan) Await() error {
	<-c
	return nil
}

type waitFunc func() error

func (f waitFunc) Await() error { return f() }

type completionGroup []Completion

func (g completionGroup) Await() error {
	var first error
	for _, c := range g {
		if err := c.Await(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
