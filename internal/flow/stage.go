package flow

// Stage is one state of the onboarding wizard. Exactly one stage is active at
// a time; transitions are one-directional except the resend and
// forgot-password loops.
type Stage string

const (
	// StagePhone collects the phone number and branches on account existence.
	StagePhone Stage = "PHONE"
	// StageLogin collects the password for an existing account.
	StageLogin Stage = "LOGIN"
	// StageVerify collects the OTP code for a new phone.
	StageVerify Stage = "VERIFY"
	// StageRegister collects the profile fields and finalizes the account.
	StageRegister Stage = "REGISTER"
	// StageAssignPlayer links the fresh account to a roster player.
	StageAssignPlayer Stage = "ASSIGN_PLAYER"
	// StageDone is the terminal authenticated state; the host redirects out.
	StageDone Stage = "DONE"
)
