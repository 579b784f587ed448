package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderSessionsMarkdown renders the recent-sessions view as Markdown.
func RenderSessionsMarkdown(rows []SessionRow) string {
	var sb strings.Builder

	sb.WriteString("# Recent Trading Sessions\n\n")
	if len(rows) == 0 {
		sb.WriteString("No sessions found.\n")
		return sb.String()
	}

	sb.WriteString("| Session | Market | Status | Volume | Iterations | Trades | Started | Ended |\n")
	sb.WriteString("|---------|--------|--------|--------|------------|--------|---------|-------|\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f | %d | %d | %s | %s |\n",
			shortID(r.SessionID), r.ConditionID, r.Status,
			r.Volume, r.Iterations, r.TradeCount,
			formatMillis(r.StartTime), formatMillisPtr(r.EndTime)))
	}
	return sb.String()
}

// RenderSessionDetailMarkdown renders one session with its trades and
// planned chain as Markdown.
func RenderSessionDetailMarkdown(d *SessionDetail) string {
	var sb strings.Builder
	s := d.Session

	sb.WriteString(fmt.Sprintf("# Session %s\n\n", s.SessionID))
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Market | %s |\n", s.ConditionID))
	sb.WriteString(fmt.Sprintf("| Token | %s |\n", s.TokenID))
	sb.WriteString(fmt.Sprintf("| Status | %s |\n", s.Status))
	sb.WriteString(fmt.Sprintf("| Volume | %.2f |\n", s.Volume))
	sb.WriteString(fmt.Sprintf("| Iterations | %d |\n", s.Iterations))
	sb.WriteString(fmt.Sprintf("| Wallets | %d |\n", s.WalletCount))
	sb.WriteString(fmt.Sprintf("| Trades | %d |\n", s.TradeCount))
	sb.WriteString(fmt.Sprintf("| Filled Volume | %.2f |\n", d.FilledVolume))
	sb.WriteString(fmt.Sprintf("| Avg Price | %.4f |\n", d.AvgPrice))
	sb.WriteString(fmt.Sprintf("| Started | %s |\n", formatMillis(s.StartTime)))
	sb.WriteString(fmt.Sprintf("| Ended | %s |\n", formatMillisPtr(s.EndTime)))
	sb.WriteString("\n")

	sb.WriteString("## Trades\n\n")
	if len(d.Trades) == 0 {
		sb.WriteString("No trades recorded.\n\n")
	} else {
		sb.WriteString("| Time | Wallet | Side | Price | Size | Type | Order |\n")
		sb.WriteString("|------|--------|------|-------|------|------|-------|\n")
		for _, t := range d.Trades {
			sb.WriteString(fmt.Sprintf("| %s | %s (#%d) | %s | %.4f | %.2f | %s | %s |\n",
				formatMillis(t.LoggedAt), t.Nickname, t.WalletIndex,
				t.Side, t.Price, t.Size, t.TradeType, t.OrderID))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Planned Chains\n\n")
	if len(d.Steps) == 0 {
		sb.WriteString("No chain steps recorded.\n")
	} else {
		sb.WriteString("| Iteration | Order | Wallet | Flags |\n")
		sb.WriteString("|-----------|-------|--------|-------|\n")
		for _, step := range d.Steps {
			sb.WriteString(fmt.Sprintf("| %d | %d | %s | %s |\n",
				step.Iteration, step.SequenceOrder, step.Nickname, stepFlags(step)))
		}
	}

	return sb.String()
}

// RenderWalletsMarkdown renders the wallet-activity view as Markdown.
func RenderWalletsMarkdown(rows []WalletRow) string {
	var sb strings.Builder

	sb.WriteString("# Wallet Activity\n\n")
	if len(rows) == 0 {
		sb.WriteString("No wallets registered.\n")
		return sb.String()
	}

	sb.WriteString("| Wallet | Funder | Active | Trades | Volume | Last Trade |\n")
	sb.WriteString("|--------|--------|--------|--------|--------|------------|\n")
	for _, r := range rows {
		last := "never"
		if r.LastTradeAt > 0 {
			last = formatMillis(r.LastTradeAt)
		}
		sb.WriteString(fmt.Sprintf("| %s (#%d) | %s | %t | %d | %.2f | %s |\n",
			r.Nickname, r.WalletIndex, shortID(r.Funder), r.Active,
			r.TradeCount, r.Volume, last))
	}
	return sb.String()
}

func stepFlags(s StepRow) string {
	switch {
	case s.IsInitialBuy && s.IsFinalSell:
		return "initial+final"
	case s.IsInitialBuy:
		return "initial"
	case s.IsFinalSell:
		return "final"
	default:
		return "-"
	}
}

func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12] + "..."
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func formatMillisPtr(ms *int64) string {
	if ms == nil {
		return "-"
	}
	return formatMillis(*ms)
}
