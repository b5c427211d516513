package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var signedOutTips = [...]string{
	"Small expenses add up. The dashboard keeps the receipts.",
	"A budget is a plan for money you have not spent yet.",
	"Recurring payments are easiest to forget and hardest to cancel.",
	"Every transaction you log today is one you will not reconstruct later.",
	"Savings is what is left after income meets expenses. Go and look.",
	"Receipts fade. Uploaded ones do not.",
	"Search by category to find where the month went.",
}

// printSignedOut tells the user how to sign in when no session exists.
func printSignedOut(w io.Writer) {
	tip := signedOutTips[rand.IntN(len(signedOutTips))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80")).
		Bold(true).
		Render("WEALTHWISE")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(tip)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("To sign in: wealthwise login")

	fmt.Fprintf(w, "\n%s\n\n%s\n\n%s\n\n", title, quote, hint)
}
