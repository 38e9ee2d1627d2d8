package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"frontier-forge/internal/blueprint"
)

// ErrItemNotFound is returned when the requested item is unknown to the
// catalog store. "Can't be manufactured, must be bought" is a normal outcome
// and never an error.
var ErrItemNotFound = errors.New("item not found")

// ItemSource resolves item names for chain nodes.
type ItemSource interface {
	ItemName(typeID int32) (string, bool)
}

// ChainNode is one node of a resolved production chain. The tree is owned by
// its parent, immutable after construction and safe to serialize on its own.
// A node without materials is a leaf priced purely from market data.
type ChainNode struct {
	ItemID         int32           `json:"item_id"`
	ItemName       string          `json:"item_name"`
	Quantity       int64           `json:"quantity"` // total quantity at this node (parent-scaled)
	BlueprintID    int32           `json:"blueprint_id,omitempty"`
	ActivityName   string          `json:"activity_name,omitempty"`
	Materials      []*ChainNode    `json:"materials"`
	BuyPrice       decimal.Decimal `json:"buy_price"`
	SellPrice      decimal.Decimal `json:"sell_price"`
	ProductionCost decimal.Decimal `json:"production_cost"`          // per unit
	TimeRequired   float64         `json:"time_required,omitempty"`  // adjusted seconds, 0 for leaves
}

// IsLeaf reports whether this node has no recipe-derived children.
func (n *ChainNode) IsLeaf() bool {
	return len(n.Materials) == 0
}

// TotalBuyCost is the cost of buying this node's full quantity off market.
func (n *ChainNode) TotalBuyCost() decimal.Decimal {
	return n.BuyPrice.Mul(decimal.NewFromInt(n.Quantity))
}

// TotalProductionCost is the cost of producing this node's full quantity.
func (n *ChainNode) TotalProductionCost() decimal.Decimal {
	return n.ProductionCost.Mul(decimal.NewFromInt(n.Quantity))
}

// ResolveParams are the inputs to one chain resolution.
type ResolveParams struct {
	TypeID             int32
	Quantity           int64   // >= 1
	MaterialEfficiency int     // 0-10, clamped
	TimeEfficiency     int     // 0-20, clamped
	FacilityBonus      float64 // 0.0-1.0
	MaxDepth           int     // >= 0; 0 forces a market-priced leaf
	StationID          int64   // optional price filter
	RegionID           int32   // optional price filter
}

// Resolver recursively expands a blueprint graph into a cost- and
// time-annotated production chain.
type Resolver struct {
	Items   ItemSource
	Recipes *blueprint.Library
	Cost    *CostEngine
}

// Resolve expands the requested item into a production chain tree.
// Unknown items fail with ErrItemNotFound; negative quantity or depth is
// invalid input. All "couldn't expand" conditions degrade to leaf nodes.
func (r *Resolver) Resolve(params ResolveParams) (*ChainNode, error) {
	if params.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be >= 1, got %d", params.Quantity)
	}
	if params.MaxDepth < 0 {
		return nil, fmt.Errorf("max depth must be >= 0, got %d", params.MaxDepth)
	}
	if _, ok := r.Items.ItemName(params.TypeID); !ok {
		return nil, fmt.Errorf("type %d: %w", params.TypeID, ErrItemNotFound)
	}
	params.MaterialEfficiency = clampInt(params.MaterialEfficiency, 0, 10)
	params.TimeEfficiency = clampInt(params.TimeEfficiency, 0, 20)

	visited := make(map[int32]bool)
	return r.expand(params.TypeID, params.Quantity, params, params.MaxDepth, visited), nil
}

// expand builds the node for one item at its total (parent-scaled) quantity.
// visited holds the item IDs already expanded on the current root-to-leaf
// path; each child branch receives its own copy so sibling branches never
// prune each other.
func (r *Resolver) expand(typeID int32, quantity int64, params ResolveParams, depth int, visited map[int32]bool) *ChainNode {
	name, _ := r.Items.ItemName(typeID)
	price := r.Cost.Price(typeID, params.StationID, params.RegionID)

	node := &ChainNode{
		ItemID:    typeID,
		ItemName:  name,
		Quantity:  quantity,
		BuyPrice:  price.Buy,
		SellPrice: price.Sell,
	}

	bp, hasRecipe := r.Recipes.ForProduct(typeID)
	if !hasRecipe || depth <= 0 {
		// Leaf: priced purely from market data.
		node.ProductionCost = price.Buy
		return node
	}

	mfg := bp.Manufacturing()
	node.BlueprintID = bp.ID
	node.ActivityName = mfg.Name
	node.TimeRequired = blueprint.AdjustedTime(mfg.Time, params.TimeEfficiency, params.FacilityBonus)

	branch := copyVisited(visited)
	branch[typeID] = true

	for _, mat := range mfg.Materials {
		if branch[mat.TypeID] {
			// Already expanded on this path: cycle edge, buy instead.
			continue
		}
		adjusted := blueprint.AdjustedQuantity(mat.Quantity, params.MaterialEfficiency)
		total := adjusted * quantity
		if total <= 0 {
			continue
		}
		child := r.expand(mat.TypeID, total, params, depth-1, branch)
		node.Materials = append(node.Materials, child)
	}

	if len(node.Materials) == 0 {
		// Recipe had no resolvable materials: fall back to market price.
		node.ProductionCost = price.Buy
		return node
	}

	// Rollup: sum of child cost-per-unit at the child's total quantity,
	// divided by this node's requested quantity.
	total := decimal.Zero
	for _, child := range node.Materials {
		total = total.Add(child.TotalProductionCost())
	}
	node.ProductionCost = total.Div(decimal.NewFromInt(quantity))
	return node
}

func copyVisited(visited map[int32]bool) map[int32]bool {
	out := make(map[int32]bool, len(visited)+1)
	for id := range visited {
		out[id] = true
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
