// Package vocab serves the built-in vocabulary catalog and turns its topics
// into shuffled flashcard decks for drill sessions.
//
// Topics are addressed by slug, so "Project Management", "project-management"
// and "PROJECT management" all resolve to the same topic. Deck shuffling
// happens here; the drill engine presents cards in the order it is given.
package vocab
