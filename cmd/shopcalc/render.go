package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Simplici0/shopcalc/internal/export"
	"github.com/Simplici0/shopcalc/internal/pricing"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#EE4D2D", Dark: "#FF7A5C"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#12B76A", Dark: "#73F59F"}
	colorDanger  = lipgloss.AdaptiveColor{Light: "#D92D20", Dark: "#F97066"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#98A2B3", Dark: "#667085"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#D0D5DD", Dark: "#475467"}
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	titleStyle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	dangerStyle  = lipgloss.NewStyle().Foreground(colorDanger)
	labelStyle   = lipgloss.NewStyle().Width(24)
	amountStyle  = lipgloss.NewStyle().Width(14).Align(lipgloss.Right)
)

func render(cfg pricing.Config, sol pricing.Solution) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(productTitle(cfg.ProductName)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(modeLine(cfg, sol)))
	b.WriteString("\n\n")

	for _, line := range sol.Breakdown {
		b.WriteString(breakdownRow(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(row("Net margin", marginText(sol.NetMargin)))
	b.WriteString("\n")
	b.WriteString(row("Break-even price", breakEvenText(sol.Result)))
	b.WriteString("\n")
	b.WriteString(row("Target", targetText(cfg.Target, sol.Feasible)))
	b.WriteString("\n\n")

	b.WriteString(row("Max voucher", headroomText(sol.VoucherHeadroom())))
	b.WriteString("\n")
	b.WriteString(row("Max "+adsLabel(cfg.AdsLabel), headroomText(sol.AdsHeadroom())))

	return panelStyle.Render(b.String())
}

func productTitle(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Product"
	}
	return name
}

func modeLine(cfg pricing.Config, sol pricing.Solution) string {
	if sol.Mode == pricing.ModeGivenPrice {
		return "given price"
	}
	return fmt.Sprintf("solved with %s, raw %s, rounding %s", sol.Strategy, export.Amount(sol.RawPrice), cfg.Rounding)
}

func breakdownRow(line pricing.Line) string {
	amount := export.Grouped(line.Value)
	if line.IsDeduction {
		amount = "-" + amount
	}

	style := lipgloss.NewStyle()
	switch {
	case line.Key == pricing.LineNetProfit && line.Value < 0:
		style = dangerStyle
	case line.Key == pricing.LineNetProfit:
		style = successStyle
	case line.IsDeduction:
		style = mutedStyle
	}
	return labelStyle.Render(line.Label) + style.Inherit(amountStyle).Render(amount)
}

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

func marginText(margin float64) string {
	text := fmt.Sprintf("%.2f%%", margin*100)
	if margin < 0 {
		return dangerStyle.Render(text)
	}
	return text
}

func breakEvenText(res pricing.Result) string {
	if !res.BreakEvenReachable {
		return dangerStyle.Render("unreachable")
	}
	return export.Grouped(res.BreakEvenPrice)
}

func targetText(t pricing.Target, feasible bool) string {
	var text string
	if t.Kind == pricing.TargetProfit {
		text = "profit " + export.Grouped(t.Value)
	} else {
		text = fmt.Sprintf("margin %.2f%%", t.Value)
	}
	if feasible {
		return successStyle.Render(text + " met")
	}
	return dangerStyle.Render(text + " missed")
}

func headroomText(h pricing.Headroom) string {
	if !h.Safe() {
		return dangerStyle.Render(fmt.Sprintf("no room (%.2f%%)", float64(h)))
	}
	return successStyle.Render(fmt.Sprintf("%.2f%%", float64(h)))
}

func adsLabel(label string) string {
	if strings.TrimSpace(label) == "" {
		return "ads"
	}
	return label
}
