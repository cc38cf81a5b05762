package enum

// EntityKind represents which aggregate an audit entry belongs to.
//
//go:generate go tool enumer -type=EntityKind -trimprefix=EntityKind
type EntityKind int

const (
	// EntityKindUser covers tier and profile changes.
	EntityKindUser EntityKind = iota
	// EntityKindConsent covers guardian consent lifecycle changes.
	EntityKindConsent
	// EntityKindSafety covers safety state machine transitions.
	EntityKindSafety
	// EntityKindAlert covers escalation alert dispatch changes.
	EntityKindAlert
)

// ActorKind represents who performed an audited change.
//
//go:generate go tool enumer -type=ActorKind -trimprefix=ActorKind
type ActorKind int

const (
	// ActorKindSystem indicates an automatic transition.
	ActorKindSystem ActorKind = iota
	// ActorKindResponder indicates a crisis responder action.
	ActorKindResponder
	// ActorKindGuardian indicates a guardian decision via the callback channel.
	ActorKindGuardian
)

// ReasonCode represents why an audited transition happened.
//
//go:generate go tool enumer -type=ReasonCode -trimprefix=ReasonCode
type ReasonCode int

const (
	// ReasonCodeCriticalContent tracks locks triggered by a critical classification.
	ReasonCodeCriticalContent ReasonCode = iota
	// ReasonCodeUserReport tracks locks triggered by an immediate-danger report.
	ReasonCodeUserReport
	// ReasonCodeRepeatTrigger tracks incidents attached to an already-locked user.
	ReasonCodeRepeatTrigger
	// ReasonCodeResponderAccepted tracks a responder claiming an alert within its window.
	ReasonCodeResponderAccepted
	// ReasonCodeLateAccept tracks a responder claiming an alert after it went unstaffed.
	ReasonCodeLateAccept
	// ReasonCodeResolved tracks a responder closing an engagement.
	ReasonCodeResolved
	// ReasonCodeWatchlistStart tracks the automatic move onto the watchlist after resolution.
	ReasonCodeWatchlistStart
	// ReasonCodeWatchlistLapsed tracks the lazy return to normal once the watchlist window passes.
	ReasonCodeWatchlistLapsed
	// ReasonCodeConsentRequested tracks a new guardian consent request.
	ReasonCodeConsentRequested
	// ReasonCodeConsentApproved tracks a guardian approval.
	ReasonCodeConsentApproved
	// ReasonCodeConsentDenied tracks a guardian denial.
	ReasonCodeConsentDenied
	// ReasonCodeConsentRevoked tracks a guardian withdrawing an approval.
	ReasonCodeConsentRevoked
	// ReasonCodeConsentExpired tracks a pending request lapsing past its response window.
	ReasonCodeConsentExpired
	// ReasonCodeClassifierFailure tracks content published unclassified after an upstream failure.
	ReasonCodeClassifierFailure
	// ReasonCodeScopeEscalated tracks an alert re-broadcast at a wider responder scope.
	ReasonCodeScopeEscalated
	// ReasonCodeUnstaffedCrisis tracks the escalation ladder running out without an accept.
	ReasonCodeUnstaffedCrisis
	// ReasonCodeBirthDateCorrected tracks a tier recomputation after a birth date change.
	ReasonCodeBirthDateCorrected
)
