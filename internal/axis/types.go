package axis

// #region domain

// Domain identifies which axis family a definition belongs to.
type Domain string

const (
	DomainMood   Domain = "mood"   // native [-100,100], normalized [-1,1]
	DomainSexual Domain = "sexual" // native [0,100], normalized [0,1]
	DomainTrait  Domain = "trait"  // native [0,100], normalized [0,1]
)

// #endregion domain

// #region definition

// Definition describes one canonical continuous axis.
type Definition struct {
	Name      string
	Domain    Domain
	NativeMin float64
	NativeMax float64
	Integer   bool // declared integer-domain: sampled and swept in whole steps
}

// #endregion definition
