package donation

import (
	"fmt"
	"strings"

	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/coin"
)

// CommitmentEntry is a single line of the commitments report.
type CommitmentEntry struct {
	Matcher   matching.AccountID `json:"matcher"`
	Amount    coin.Amount        `json:"amount"`
	Available coin.Amount        `json:"available"`
}

// CommitmentsReport lists everyone matching donations to a recipient.
type CommitmentsReport struct {
	Recipient matching.AccountID `json:"recipient"`
	Entries   []CommitmentEntry  `json:"entries"`
	Text      string             `json:"text"`
}

// GetCommitments returns the commitments to given recipient, ordered by
// matcher.
func GetCommitments(db matching.ReadOnlyKVStore, recipient matching.AccountID) (*CommitmentsReport, error) {
	commitments, err := NewLedger().List(db, recipient)
	if err != nil {
		return nil, err
	}
	report := &CommitmentsReport{
		Recipient: recipient,
		Entries:   make([]CommitmentEntry, 0, len(commitments)),
	}
	if len(commitments) == 0 {
		report.Text = fmt.Sprintf("nobody is matching donations to %s", recipient)
		return report, nil
	}
	lines := make([]string, len(commitments))
	for i, c := range commitments {
		report.Entries = append(report.Entries, CommitmentEntry{
			Matcher:   c.Matcher,
			Amount:    c.Amount,
			Available: c.Available(),
		})
		lines[i] = fmt.Sprintf("%s is committed to match donations to %s up to a maximum of %s", c.Matcher, recipient, c.Amount)
	}
	report.Text = strings.Join(lines, " ")
	return report, nil
}
