// Package algo implements a momentum rebalancer for a fixed universe of equities.
//
// The universe is ranked by trailing return over a lookback window. Held stocks
// that fall out of the top-2K are sold, the top-K are bought, and the available
// cash is allocated in two phases:
//
//   - a guarantee phase reserving one unit's price for every affordable
//     candidate, in rank order;
//   - a remainder phase sharing what is left with decaying weights
//     20×0.8^i, favoring the best ranks.
//
// Allocations are converted to whole units, and the leftover cash above a
// threshold is finally spent on extra units of the cheapest holdings.
//
// Portfolios are persisted as CSV ledgers ("Symbol,Units") where the CASH row
// holds the uninvested balance.
package algo
