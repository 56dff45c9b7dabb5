// Package taxonomy maps clause categories to stable colors and
// descriptions. The table covers the full classifier vocabulary; any
// string outside it resolves to one designated fallback color, so an
// overlay and an external legend built from the same registry always
// agree.
package taxonomy

import (
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// Category is one entry of the clause taxonomy.
type Category struct {
	Name        string
	Description string
	Color       color.NRGBA
}

// Fallback is the single color used for every category not in the
// table, including the classifier's catch-all bucket.
var Fallback = nrgba(colornames.Slategray)

// Build-once, read-many: the table is fixed for the process lifetime.
var categories = []Category{
	{"Document Name", "The name of the contract.", nrgba(colornames.Royalblue)},
	{"Parties", "The parties who signed the contract.", nrgba(colornames.Darkorange)},
	{"Agreement Date", "The date of the contract.", nrgba(colornames.Seagreen)},
	{"Effective Date", "The date when the contract becomes effective.", nrgba(colornames.Mediumseagreen)},
	{"Expiration Date", "The date when the initial term expires.", nrgba(colornames.Crimson)},
	{"Renewal Term", "The renewal term after the initial term expires.", nrgba(colornames.Goldenrod)},
	{"Notice Period To Terminate Renewal", "The notice period required to terminate a renewal.", nrgba(colornames.Darkgoldenrod)},
	{"Governing Law", "Which state or country's law governs the contract.", nrgba(colornames.Indigo)},
	{"Most Favored Nation", "A third party getting better terms entitles the counterparty to those terms.", nrgba(colornames.Teal)},
	{"Non-Compete", "Restrictions on competing with the counterparty.", nrgba(colornames.Firebrick)},
	{"Exclusivity", "Exclusive dealing or prohibition on licensing to third parties.", nrgba(colornames.Darkmagenta)},
	{"No-Solicit Of Customers", "Restrictions on soliciting the counterparty's customers.", nrgba(colornames.Chocolate)},
	{"Competitive Restriction Exception", "Exceptions to non-compete, exclusivity or no-solicit terms.", nrgba(colornames.Cadetblue)},
	{"No-Solicit Of Employees", "Restrictions on soliciting or hiring the counterparty's employees.", nrgba(colornames.Sienna)},
	{"Non-Disparagement", "A requirement not to disparage the counterparty.", nrgba(colornames.Slateblue)},
	{"Termination For Convenience", "A party may terminate without cause.", nrgba(colornames.Orangered)},
	{"Rofr/Rofo/Rofn", "Right of first refusal, offer or negotiation.", nrgba(colornames.Darkcyan)},
	{"Change Of Control", "Rights triggered by a change of control of the counterparty.", nrgba(colornames.Mediumvioletred)},
	{"Anti-Assignment", "Consent or notice is required to assign the contract.", nrgba(colornames.Tomato)},
	{"Revenue/Profit Sharing", "A party must share revenue or profit with the counterparty.", nrgba(colornames.Olivedrab)},
	{"Price Restrictions", "Restrictions on the ability to raise or reduce prices.", nrgba(colornames.Peru)},
	{"Minimum Commitment", "A minimum order size or purchase amount.", nrgba(colornames.Steelblue)},
	{"Volume Restriction", "A fee increase or consent requirement above certain usage.", nrgba(colornames.Rosybrown)},
	{"IP Ownership Assignment", "Intellectual property created by one party becomes the counterparty's.", nrgba(colornames.Darkslateblue)},
	{"Joint IP Ownership", "Joint ownership of intellectual property.", nrgba(colornames.Mediumorchid)},
	{"License Grant", "A license granted by one party to the counterparty.", nrgba(colornames.Forestgreen)},
	{"Non-Transferable License", "The license is non-transferable.", nrgba(colornames.Darkolivegreen)},
	{"Affiliate License-Licensor", "The license extends to the licensor's affiliates.", nrgba(colornames.Dodgerblue)},
	{"Affiliate License-Licensee", "Affiliates of the licensee may use the licensed material.", nrgba(colornames.Deepskyblue)},
	{"Unlimited/All-You-Can-Eat-License", "An unlimited usage license.", nrgba(colornames.Limegreen)},
	{"Irrevocable Or Perpetual License", "The license is irrevocable or perpetual.", nrgba(colornames.Darkgreen)},
	{"Source Code Escrow", "Source code is deposited in escrow or released on certain events.", nrgba(colornames.Dimgray)},
	{"Post-Termination Services", "Obligations that continue after termination.", nrgba(colornames.Coral)},
	{"Audit Rights", "A right to audit the books or records of the counterparty.", nrgba(colornames.Navy)},
	{"Uncapped Liability", "A party's liability is uncapped for certain breaches.", nrgba(colornames.Darkred)},
	{"Cap On Liability", "A cap on a party's liability.", nrgba(colornames.Indianred)},
	{"Liquidated Damages", "A party must pay a fixed or formula-based amount on breach.", nrgba(colornames.Maroon)},
	{"Warranty Duration", "The duration of any warranty on the work.", nrgba(colornames.Darkkhaki)},
	{"Insurance", "A requirement to maintain insurance.", nrgba(colornames.Mediumblue)},
	{"Covenant Not To Sue", "A party may not sue the counterparty for certain claims.", nrgba(colornames.Purple)},
	{"Third Party Beneficiary", "A non-party is entitled to enforce the contract.", nrgba(colornames.Darkseagreen)},
}

var byKey = buildKeys()

func buildKeys() map[string]Category {
	m := make(map[string]Category, len(categories))
	for _, c := range categories {
		m[key(c.Name)] = c
	}
	return m
}

// Lookups tolerate stray whitespace and casing from the classifier but
// nothing looser than that.
func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func nrgba(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Color returns the category's color, or Fallback for any category
// outside the table. The result for a given string never changes.
func Color(category string) color.NRGBA {
	if c, ok := byKey[key(category)]; ok {
		return c.Color
	}
	return Fallback
}

// Describe returns the category's tooltip description, or "" for a
// category outside the table.
func Describe(category string) string {
	if c, ok := byKey[key(category)]; ok {
		return c.Description
	}
	return ""
}

// Known reports whether the category is part of the fixed vocabulary.
func Known(category string) bool {
	_, ok := byKey[key(category)]
	return ok
}

// Categories returns the full taxonomy in its fixed order, for legends.
// The returned slice is a copy.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}
