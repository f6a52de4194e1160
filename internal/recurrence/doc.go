// Package recurrence detects recurring charges (subscriptions, memberships,
// utilities) in a transaction history.
//
// A detection pass groups expenses by normalized merchant key, classifies the
// gaps between charges against a fixed cadence table, measures how stable the
// amounts are, scores the result 0-100 and predicts the next charge. Every
// pass is a pure function of its input and the Tuning in effect: nothing is
// mutated and repeated runs return identical output in identical order.
//
// Grouping is exact on the normalized key. Spellings that normalize
// differently ("Netflix.com" vs "Netflix") stay separate groups.
package recurrence
