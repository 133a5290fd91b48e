// Package workflow assembles a school's booklists in memory before writing them.
//
// A user picks a subject, a publication, a title and one or more classes,
// then stages the pick. Staged books are grouped per class with the price
// resolved for that class. Staging consumes the title's subject, so each
// build carries at most one title per subject. Saving hands the staged plan
// to a Committer:
//
//   - FanOutCommitter issues one create-booklist call per class, then one
//     attach-item call per staged book, concurrently within each phase.
//     A failure in the second phase leaves empty booklists behind.
//   - The server-side committer writes the whole plan in one transaction.
//
// State and its transitions are plain values and functions. Controller owns
// one State behind a mutex and performs the catalog lookups around each
// transition.
package workflow
