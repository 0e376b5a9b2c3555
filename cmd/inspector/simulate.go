package main

import (
	"strings"

	"github.com/kelsos/ssv-cluster-debugger/internal/calc"
	"github.com/kelsos/ssv-cluster-debugger/internal/tui"
)

// simulation holds the raw what-if inputs of the simulate command
type simulation struct {
	delta            string
	runwayDays       string
	effectiveBalance string
	targetBlock      string
	blocksFromNow    string
}

func (s simulation) empty() bool {
	return strings.TrimSpace(s.delta+s.runwayDays+s.effectiveBalance+s.targetBlock+s.blocksFromNow) == ""
}

// render runs every calculator that has an input against the dashboard baseline
func (s simulation) render(d *calc.Dashboard) string {
	b := d.Baseline()
	asset := d.AssetType

	var out []string
	if s.effectiveBalance != "" {
		out = append(out, tui.RenderEffectiveBalance(calc.UpdateEffectiveBalance(b, s.effectiveBalance), asset))
	}
	if s.runwayDays != "" {
		out = append(out, tui.RenderTargetRunway(calc.TargetRunway(b, s.runwayDays), asset))
	}
	if s.delta != "" {
		out = append(out, tui.RenderDepositWithdraw(calc.DepositWithdraw(b, s.delta), asset))
	}
	if s.targetBlock != "" {
		out = append(out, tui.RenderLiquidationTarget(calc.LiquidationTarget(b, calc.ModeAbsolute, s.targetBlock), calc.ModeAbsolute, asset))
	}
	if s.blocksFromNow != "" {
		out = append(out, tui.RenderLiquidationTarget(calc.LiquidationTarget(b, calc.ModeRelative, s.blocksFromNow), calc.ModeRelative, asset))
	}
	return strings.Join(out, "\n")
}
