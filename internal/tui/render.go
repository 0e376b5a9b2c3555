package tui

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kelsos/ssv-cluster-debugger/internal/calc"
	"github.com/kelsos/ssv-cluster-debugger/internal/models"
)

const labelWidth = 26

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	sectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("62"))

	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(labelWidth)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

type row struct {
	label string
	value string
}

func section(title string, rows []row) string {
	var s strings.Builder
	s.WriteString(sectionTitleStyle.Render(title))
	s.WriteString("\n")
	for _, r := range rows {
		s.WriteString(labelStyle.Render(r.label))
		s.WriteString(valueStyle.Render(r.value))
		s.WriteString("\n")
	}
	return sectionStyle.Render(strings.TrimRight(s.String(), "\n"))
}

func amount(v *big.Int, asset models.AssetType) string {
	return fmt.Sprintf("%s %s", calc.FormatEther(v), asset.Label())
}

func days(d float64) string {
	return fmt.Sprintf("%.2f days", d)
}

func runway(r calc.Runway) string {
	return fmt.Sprintf("%s blocks (%s)", blocks(r.Blocks), days(r.Days))
}

func blocks(v *big.Int) string {
	if v == nil {
		return "-"
	}
	return v.String()
}

func eb(v *big.Int) string {
	if v == nil {
		return "-"
	}
	return v.String() + " ETH"
}

// RenderHeader renders the title line for a cluster
func RenderHeader(q models.ClusterQuery) string {
	return headerStyle.Render("🔎 SSV Cluster Debugger") + "\n" +
		hintStyle.Render("Cluster "+q.ID())
}

// RenderDashboard renders every baseline panel of the dashboard
func RenderDashboard(d *calc.Dashboard, now time.Time) string {
	panels := []string{
		renderOverview(d, now),
		renderBreakdown(d),
		renderOperators(d),
		renderNetwork(d),
		renderSnapshot(d),
	}
	return strings.Join(panels, "\n")
}

func renderStatus(d *calc.Dashboard) string {
	switch {
	case d.Contract.IsLiquidated:
		return errorStyle.Render("Liquidated")
	case d.IsLiquidatable:
		return warningStyle.Render("Liquidatable")
	default:
		return okStyle.Render("Active")
	}
}

func renderOverview(d *calc.Dashboard, now time.Time) string {
	asset := d.AssetType
	estimate := d.Liquidation(now)

	currentBlock := "-"
	if d.CurrentBlock != nil {
		currentBlock = fmt.Sprintf("%d", *d.CurrentBlock)
	}
	liquidationDate := "-"
	if estimate.Date != nil {
		liquidationDate = estimate.Date.Format("2006-01-02 15:04")
	}

	rows := []row{
		{"Fee token", asset.Label()},
		{"Status", renderStatus(d)},
		{"Balance", amount(d.Balance, asset)},
		{"Burn rate per block", amount(d.BurnRate.PerBlock, asset)},
		{"Burn rate per year", amount(d.BurnRate.Annual, asset)},
		{"Liquidation collateral", amount(d.Collateral, asset)},
		{"Runway", runway(d.Runway)},
		{"Current block", currentBlock},
		{"Liquidation block (est.)", blocks(estimate.Block)},
		{"Liquidation date (est.)", liquidationDate},
		{"Effective balance", fmt.Sprintf("%s (x%s)", eb(d.EffectiveBalance), d.EBScale)},
		{"Validators", fmt.Sprintf("%d", d.Snapshot.ValidatorCount)},
	}
	return section("Overview", rows)
}

func renderBreakdown(d *calc.Dashboard) string {
	asset := d.AssetType
	b := d.Breakdown

	match := okStyle.Render("matches contract")
	if !d.ContractBurnRateMatches {
		match = warningStyle.Render("differs, contract reports " + amount(d.Contract.BurnRatePerBlock, asset))
	}

	rows := []row{
		{"Operator fees per block", amount(b.OperatorFeesPerBlock, asset)},
		{"Operator fees per year", amount(b.OperatorFeesAnnual, asset)},
		{"Operator fees x EB scale", amount(b.OperatorFeesScaled, asset)},
		{"Network fee per block", amount(b.NetworkFeePerBlock, asset)},
		{"Network fee per year", amount(b.NetworkFeeAnnual, asset)},
		{"Network fee x EB scale", amount(b.NetworkFeeScaled, asset)},
		{"Total per year", amount(d.BurnRate.Annual, asset)},
		{"Burn rate check", match},
	}
	return section("Burn rate breakdown", rows)
}

func renderOperators(d *calc.Dashboard) string {
	rows := make([]row, 0, len(d.Operators))
	for _, op := range d.Operators {
		rows = append(rows, row{
			label: fmt.Sprintf("Operator %d", op.OperatorID),
			value: fmt.Sprintf("%s / block, %s / year",
				amount(op.FeePerBlock, d.AssetType),
				amount(calc.ScaleToAnnual(op.FeePerBlock), d.AssetType)),
		})
	}
	return section("Operators", rows)
}

func renderNetwork(d *calc.Dashboard) string {
	asset := d.AssetType
	rows := []row{
		{"Network fee per year", amount(d.Breakdown.NetworkFeeAnnual, asset)},
		{"Liquidation threshold", fmt.Sprintf("%s blocks (%s)", blocks(d.Network.LiquidationThresholdBlocks), days(d.ThresholdDays()))},
		{"Minimum collateral", amount(d.Network.MinCollateral, asset)},
	}
	return section("Network parameters", rows)
}

func renderSnapshot(d *calc.Dashboard) string {
	return section("Cluster snapshot", []row{{"Tuple", d.Snapshot.Tuple()}})
}

func renderInvalid(err error) string {
	return errorStyle.Render("Invalid input: " + err.Error())
}

// RenderEffectiveBalance renders the Update EB / Validators calculator
func RenderEffectiveBalance(res calc.Result[calc.EffectiveBalanceOutcome], asset models.AssetType) string {
	switch {
	case res.IsUnset():
		if asset == models.AssetETH {
			return hintStyle.Render("Enter a new effective balance in ETH")
		}
		return hintStyle.Render("Enter a new validator count")
	case res.IsInvalid():
		return renderInvalid(res.Err)
	}

	o := res.Value
	rows := []row{
		{"Effective balance", fmt.Sprintf("%s → %s", eb(o.CurrentEffectiveBalance), eb(o.NewEffectiveBalance))},
		{"Validators", fmt.Sprintf("%d → %d", o.CurrentValidators, o.NewValidators)},
		{"Burn rate per block", amount(o.BurnRate.PerBlock, asset)},
		{"Burn rate per year", amount(o.BurnRate.Annual, asset)},
		{"Liquidation collateral", amount(o.Collateral, asset)},
		{"Runway", runway(o.Runway)},
	}
	return section("Effective balance what-if", rows)
}

// RenderTargetRunway renders the Target Runway calculator
func RenderTargetRunway(res calc.Result[calc.RunwayTarget], asset models.AssetType) string {
	switch {
	case res.IsUnset():
		return hintStyle.Render("Enter a target runway in days")
	case res.IsInvalid():
		return renderInvalid(res.Err)
	}

	t := res.Value
	diff := new(big.Int).Abs(t.Difference)
	outcome := okStyle.Render("Surplus " + amount(diff, asset))
	if t.Shortfall() {
		outcome = warningStyle.Render("Deposit needed " + amount(diff, asset))
	}

	rows := []row{
		{"Target runway", fmt.Sprintf("%s (%s blocks)", days(t.Days), blocks(t.TargetBlocks))},
		{"Required balance", amount(t.RequiredBalance, asset)},
		{"Current balance", amount(t.CurrentBalance, asset)},
		{"Difference", outcome},
	}
	return section("Target runway", rows)
}

// RenderDepositWithdraw renders the Deposit / Withdraw calculator
func RenderDepositWithdraw(res calc.Result[calc.DepositOutcome], asset models.AssetType) string {
	switch {
	case res.IsUnset():
		return hintStyle.Render("Enter an amount, negative to withdraw")
	case res.IsInvalid():
		return renderInvalid(res.Err)
	}

	o := res.Value
	action := "Deposit"
	if o.Delta.Sign() < 0 {
		action = "Withdraw"
	}

	rows := []row{
		{action, amount(new(big.Int).Abs(o.Delta), asset)},
		{"Balance", fmt.Sprintf("%s → %s", amount(o.CurrentBalance, asset), amount(o.NewBalance, asset))},
		{"Runway", runway(o.Runway)},
	}
	return section("Deposit / withdraw", rows)
}

// RenderLiquidationTarget renders the Liquidation calculator
func RenderLiquidationTarget(res calc.Result[calc.LiquidationProjection], mode calc.LiquidationMode, asset models.AssetType) string {
	switch {
	case res.IsUnset():
		if mode == calc.ModeRelative {
			return hintStyle.Render("Enter a number of blocks from now")
		}
		return hintStyle.Render("Enter a target block number")
	case res.IsInvalid():
		return renderInvalid(res.Err)
	}

	p := res.Value
	rows := []row{
		{"Mode", p.Mode.String()},
		{"Target block", blocks(p.TargetBlock)},
		{"Blocks from now", blocks(p.TargetBlocksFromNow)},
		{"Required balance", amount(p.RequiredBalance, asset)},
		{"Max withdrawable", amount(p.MaxWithdrawable, asset)},
	}
	return section("Liquidate at block", rows)
}
