package meet

// Action decides what happens when a provisioning layer fails.
type Action int

const (
	// FallbackLink answers with a placeholder meeting link so the guest still gets a result.
	FallbackLink Action = iota
	// Fail reports the failure to the caller.
	Fail
)

func (a Action) String() string {
	if a == Fail {
		return "fail"
	}
	return "fallback_link"
}

// FallbackPolicy configures each provisioning layer independently.
type FallbackPolicy struct {
	OnAuthFailure     Action
	OnProviderError   Action
	OnUnexpectedError Action
}

// GuestFriendly never surfaces provider failures; the meeting id carries the fallback tag instead.
func GuestFriendly() FallbackPolicy {
	return FallbackPolicy{}
}

// Strict reports every failure.
func Strict() FallbackPolicy {
	return FallbackPolicy{OnAuthFailure: Fail, OnProviderError: Fail, OnUnexpectedError: Fail}
}

// PolicyFromFlags maps strict-mode switches (as read from config) to a policy.
func PolicyFromFlags(strictAuth, strictProvider, strictUnexpected bool) FallbackPolicy {
	pick := func(strict bool) Action {
		if strict {
			return Fail
		}
		return FallbackLink
	}
	return FallbackPolicy{
		OnAuthFailure:     pick(strictAuth),
		OnProviderError:   pick(strictProvider),
		OnUnexpectedError: pick(strictUnexpected),
	}
}
