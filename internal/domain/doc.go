// Package domain contains the vocabulary entities shared by every layer:
// flashcards and their language fields, the outcome events the drill engine
// emits, and the long-term word statistics built from those outcomes.
//
// Game mode configuration lives in the gamemode subpackage.
package domain
