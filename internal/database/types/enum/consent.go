package enum

// ConsentStatus represents the lifecycle state of a guardian consent record.
//
//go:generate go tool enumer -type=ConsentStatus -trimprefix=ConsentStatus
type ConsentStatus int

const (
	// ConsentStatusPending indicates a request is waiting for the guardian's decision.
	ConsentStatusPending ConsentStatus = iota
	// ConsentStatusApproved indicates the guardian approved; valid until the expiry date.
	ConsentStatusApproved
	// ConsentStatusDenied indicates the guardian declined; terminal.
	ConsentStatusDenied
	// ConsentStatusExpired indicates the request ran out before a decision arrived.
	ConsentStatusExpired
	// ConsentStatusRevoked indicates an approval was withdrawn by the guardian.
	ConsentStatusRevoked
)

// Active reports whether the record still drives a gating decision.
func (i ConsentStatus) Active() bool {
	return i == ConsentStatusPending || i == ConsentStatusApproved
}

// ConsentMethod represents how the guardian is contacted for a decision.
//
//go:generate go tool enumer -type=ConsentMethod -trimprefix=ConsentMethod
type ConsentMethod int

const (
	// ConsentMethodEmail delivers the consent request by email.
	ConsentMethodEmail ConsentMethod = iota
	// ConsentMethodSMS delivers the consent request by text message.
	ConsentMethodSMS
	// ConsentMethodBankID verifies the guardian through the national identity scheme.
	ConsentMethodBankID
)
