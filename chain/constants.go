package chain

const (
	// AmountDecimals is the number of decimal places between a whole unit
	// and the micro-units every amount is denominated in.
	AmountDecimals = 6

	SignCallMagic = "hammer signed call:\n"

	AddressHashSize = 20
)
