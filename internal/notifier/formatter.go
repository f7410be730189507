package notifier

import (
	"fmt"
	"strings"
	"time"

	"WolfHunter/internal/model"

	"github.com/dustin/go-humanize"
)

var signalTitles = map[model.SignalType]string{
	model.SignalAccumulation: "Accumulation",
	model.SignalVReversal:    "V-Reversal",
	model.SignalBandBreak:    "Band Break",
}

// scoreBadge colours the buy score the way the dashboard does.
func scoreBadge(score int) string {
	switch {
	case score < 30:
		return "⚪"
	case score < 50:
		return "🟡"
	case score < 70:
		return "🟠"
	default:
		return "🟢"
	}
}

func formatPrice(p float64) string {
	return humanize.CommafWithDigits(p, 8)
}

// FormatEvaluation formats one timeframe evaluation into a Telegram message.
func FormatEvaluation(res *model.Result, symbol string, now time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🐺 <b>WolfHunter</b> | %s %s\n\n", symbol, res.Timeframe))

	if last, ok := res.Series.Latest(); ok {
		b.WriteString(fmt.Sprintf("Price: %s\n", formatPrice(last.Close)))
		b.WriteString(fmt.Sprintf("Volume: %s\n", humanize.SIWithDigits(last.Volume, 2, "")))
	}
	b.WriteString(fmt.Sprintf("%s <b>Buy score: %d/100</b> (%s)\n\n", scoreBadge(res.BuyScore), res.BuyScore, res.Level.Label))

	b.WriteString("📈 <b>Signals:</b>\n")
	for _, s := range res.Signals {
		title := signalTitles[s.Type]
		if !s.Detected {
			b.WriteString(fmt.Sprintf("  ▫️ %s: not detected\n", title))
			continue
		}
		b.WriteString(fmt.Sprintf("  ✅ %s: %d%% | %s\n", title, s.Strength, s.Message))
		for _, ev := range s.Evidence {
			line := fmt.Sprintf("      %s = %.4g", ev.Name, ev.Value)
			if ev.Details != "" {
				line += " (" + ev.Details + ")"
			}
			b.WriteString(line + "\n")
		}
	}

	if res.EntryPrice > 0 {
		b.WriteString(fmt.Sprintf("\n💰 <b>Suggested entry:</b> %s\n", formatPrice(res.EntryPrice)))
	}
	if res.Stale {
		b.WriteString(fmt.Sprintf("\n⚠️ Live data unavailable, showing result from %s\n",
			humanize.RelTime(res.ComputedAt, now, "ago", "from now")))
	}
	return b.String()
}

// FormatAlert formats the message sent when a timeframe crosses the alert threshold.
func FormatAlert(res *model.Result, symbol string, threshold int, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚨 <b>Buy alert</b> | %s %s score %d ≥ %d\n\n", symbol, res.Timeframe, res.BuyScore, threshold))
	b.WriteString(FormatEvaluation(res, symbol, now))
	return b.String()
}

// FormatSummary lists the score of every evaluated timeframe on one line each.
// Timeframes that could not be evaluated are listed with their error.
func FormatSummary(symbol string, results []*model.Result, failures map[model.Timeframe]error) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🐺 <b>WolfHunter</b> | %s overview\n\n", symbol))
	for _, res := range results {
		line := fmt.Sprintf("%s <b>%s</b>: %d (%s)", scoreBadge(res.BuyScore), res.Timeframe, res.BuyScore, res.Level.Label)
		if n := len(res.Detected()); n > 0 {
			line += fmt.Sprintf(" | %d signal(s)", n)
		}
		if res.Stale {
			line += " ⚠️ stale"
		}
		b.WriteString(line + "\n")
	}
	for _, tf := range model.Timeframes {
		if err, ok := failures[tf]; ok {
			b.WriteString(fmt.Sprintf("❌ <b>%s</b>: %v\n", tf, err))
		}
	}
	return b.String()
}

// FormatHelp lists the available commands.
func FormatHelp(timeframes []model.Timeframe) string {
	names := make([]string, len(timeframes))
	for i, tf := range timeframes {
		names[i] = tf.String()
	}
	return "Available commands:\n" +
		"• /score [timeframe]: evaluate one timeframe, or all configured ones\n" +
		"• /refresh &lt;timeframe&gt;: drop the cached result and re-evaluate\n" +
		"• /help: show this message\n\n" +
		"Timeframes: " + strings.Join(names, ", ")
}
