package product

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Low-stock rule defaults.
const (
	DefaultLowStockExpr      = "stock <= threshold"
	DefaultLowStockThreshold = 5.0
)

// LowStockRule is a compiled CEL predicate over one product.
//
// Variables: stock, threshold, sell_price, purchase_price (double),
// warranty_months (int), unit, common_id, name (string).
type LowStockRule struct {
	expr      string
	threshold float64
	program   cel.Program
}

// NewLowStockRule compiles expr. The expression must evaluate to bool.
func NewLowStockRule(expr string, threshold float64) (*LowStockRule, error) {
	if expr == "" {
		expr = DefaultLowStockExpr
	}

	env, err := cel.NewEnv(
		cel.Variable("stock", cel.DoubleType),
		cel.Variable("threshold", cel.DoubleType),
		cel.Variable("sell_price", cel.DoubleType),
		cel.Variable("purchase_price", cel.DoubleType),
		cel.Variable("warranty_months", cel.IntType),
		cel.Variable("unit", cel.StringType),
		cel.Variable("common_id", cel.StringType),
		cel.Variable("name", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("low-stock env: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("compile low-stock rule %q: %w", expr, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("low-stock rule %q must return bool, got %s", expr, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program low-stock rule: %w", err)
	}

	return &LowStockRule{expr: expr, threshold: threshold, program: prg}, nil
}

// MustDefaultLowStockRule returns the stock <= 5 rule.
func MustDefaultLowStockRule() *LowStockRule {
	r, err := NewLowStockRule(DefaultLowStockExpr, DefaultLowStockThreshold)
	if err != nil {
		panic(err)
	}
	return r
}

// Expr returns the source expression.
func (r *LowStockRule) Expr() string { return r.expr }

// Threshold returns the configured threshold.
func (r *LowStockRule) Threshold() float64 { return r.threshold }

// Match evaluates the rule for p.
func (r *LowStockRule) Match(p *Product) (bool, error) {
	stock, _ := p.Stock.Float64()
	sell, _ := p.SellPrice.Float64()
	purchase, _ := p.PurchasePrice.Float64()

	out, _, err := r.program.Eval(map[string]any{
		"stock":           stock,
		"threshold":       r.threshold,
		"sell_price":      sell,
		"purchase_price":  purchase,
		"warranty_months": int64(p.WarrantyMonths),
		"unit":            p.Unit,
		"common_id":       p.CommonID,
		"name":            p.Name,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate low-stock rule: %w", err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("low-stock rule returned %T", out.Value())
	}
	return matched, nil
}
