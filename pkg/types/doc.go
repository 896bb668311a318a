// Package types defines the Store and Table interfaces, the practice
// entities (clients, cases, prospects, consultations, parties, activities),
// their business rules, and the sentinel errors shared by every layer of
// docket.
package types
