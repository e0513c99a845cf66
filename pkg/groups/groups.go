// Package groups implements group-order bill splitting: per-participant
// share computation, payment-derived status, and the payment summary.
package groups

import (
	"errors"
	"fmt"
	"math"

	"github.com/example/feastly/pkg/models"
)

var (
	ErrNoParticipants  = errors.New("group order needs at least one participant")
	ErrUnknownStrategy = errors.New("unknown split strategy")
	ErrNotOrganizer    = errors.New("only the organizer may cancel a group order")
)

// ComputeShares assigns each participant a share of the total according
// to the split strategy. Shares are rounded to 2 decimals; under the
// equal strategy the last participant absorbs the rounding remainder so
// the shares always sum to the total.
func ComputeShares(g *models.GroupOrder) error {
	if len(g.Participants) == 0 {
		return ErrNoParticipants
	}

	switch g.SplitStrategy {
	case models.SplitEqual:
		n := len(g.Participants)
		share := round2(g.Total / float64(n))
		assigned := 0.0
		for i := range g.Participants {
			if i == n-1 {
				g.Participants[i].Share = round2(g.Total - assigned)
			} else {
				g.Participants[i].Share = share
				assigned = round2(assigned + share)
			}
			g.Participants[i].Items = g.SharedItems
		}
	case models.SplitItemwise:
		for i := range g.Participants {
			var sum float64
			for _, item := range g.Participants[i].Items {
				sum += float64(item.Price) * float64(item.Qty())
			}
			g.Participants[i].Share = round2(sum)
		}
	case models.SplitCustom:
		// Shares arrive from the caller as-is.
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, g.SplitStrategy)
	}

	return nil
}

// DeriveStatus computes the aggregate status from participant payment
// states: pending when nobody has paid, completed when everyone has,
// partial otherwise. Call before every persist that touches participants.
func DeriveStatus(participants []models.Participant) string {
	paid := 0
	for _, p := range participants {
		if p.PaymentStatus == models.PaymentPaid {
			paid++
		}
	}
	switch {
	case paid == 0:
		return models.GroupPending
	case paid == len(participants):
		return models.GroupCompleted
	default:
		return models.GroupPartial
	}
}

// Summary is the derived payment rollup for a group order. It is never
// stored; recompute it per request.
type Summary struct {
	PaidCount     int     `json:"paid_count"`
	PendingCount  int     `json:"pending_count"`
	PaidAmount    float64 `json:"paid_amount"`
	PendingAmount float64 `json:"pending_amount"`
	CompletionPct int     `json:"completion_pct"`
}

func PaymentSummary(g *models.GroupOrder) Summary {
	var s Summary
	for _, p := range g.Participants {
		if p.PaymentStatus == models.PaymentPaid {
			s.PaidCount++
			s.PaidAmount = round2(s.PaidAmount + p.Share)
		} else {
			s.PendingCount++
			s.PendingAmount = round2(s.PendingAmount + p.Share)
		}
	}
	if n := len(g.Participants); n > 0 {
		s.CompletionPct = int(math.Round(100 * float64(s.PaidCount) / float64(n)))
	}
	return s
}

// Cancel marks the group order cancelled when the requester is the
// organizer. Cancellation overrides the payment-derived status.
func Cancel(g *models.GroupOrder, requesterEmail string) error {
	if requesterEmail == "" || requesterEmail != g.OrganizerEmail {
		return ErrNotOrganizer
	}
	g.Status = models.GroupCancelled
	return nil
}

// PaymentLink builds the shareable mock payment URL for a participant.
// This is a formatting utility, not a payment integration.
func PaymentLink(groupCode, participantID string, amount float64) string {
	suffix := participantID
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	return fmt.Sprintf("https://pay.feastly.example/%s/%s?amount=%.2f", groupCode, suffix, amount)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
