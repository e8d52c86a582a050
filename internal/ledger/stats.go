package ledger

// Stats summarizes the chain for reporting.
type Stats struct {
	Blocks          int
	Transactions    int
	UniqueAddresses int
	TotalMinted     float64
}

// Stats replays the chain once. The genesis block is not counted as a transaction.
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	addresses := make(map[string]struct{})
	s := Stats{Blocks: len(l.chain)}
	for i, b := range l.chain {
		if i == 0 && b.IsGenesis() {
			continue
		}
		tx := b.Transaction
		s.Transactions++
		if tx.IsMint() {
			s.TotalMinted += tx.Amount
		} else {
			addresses[*tx.FromAddress] = struct{}{}
		}
		addresses[tx.ToAddress] = struct{}{}
	}
	s.UniqueAddresses = len(addresses)
	return s
}
