package access

type AccessState string

const (
	AccessGranted AccessState = "granted"
	// AccessPending: a purchase exists but the processor has not settled it.
	AccessPending AccessState = "pending"
	AccessLocked  AccessState = "locked"
)

// Source explains why access was granted.
type Source string

const (
	SourceNone       Source = "none"
	SourceMembership Source = "membership"
	SourcePurchase   Source = "purchase"
)

type ViewMode string

const (
	ViewFull    ViewMode = "full"
	ViewPreview ViewMode = "preview"
)
