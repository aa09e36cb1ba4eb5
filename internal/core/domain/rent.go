package domain

const (
	// LamportsPerSOL is the number of base units in one native coin.
	LamportsPerSOL uint64 = 1_000_000_000

	rentLamportsPerByteYear uint64 = 3480
	rentExemptionYears      uint64 = 2
	accountStorageOverhead  uint64 = 128
)

// MinimumBalance is the lamport balance an account of size bytes must keep to stay allocated.
func MinimumBalance(size int) uint64 {
	return (uint64(size) + accountStorageOverhead) * rentLamportsPerByteYear * rentExemptionYears
}
