package core

const (
	UncategorizedName = "Uncategorized"
	UnknownWalletName = "Unknown wallet"
)

// WalletIndex resolves wallet references that may dangle.
type WalletIndex map[string]Wallet

func IndexWallets(wallets []Wallet) WalletIndex {
	ix := make(WalletIndex, len(wallets))
	for _, w := range wallets {
		ix[w.ID] = w
	}
	return ix
}

// Find returns the wallet with id, or false when the reference dangles.
func (ix WalletIndex) Find(id string) (Wallet, bool) {
	w, ok := ix[id]
	return w, ok
}

// CategoryIndex resolves category references that may dangle.
type CategoryIndex map[string]Category

func IndexCategories(categories []Category) CategoryIndex {
	ix := make(CategoryIndex, len(categories))
	for _, c := range categories {
		ix[c.ID] = c
	}
	return ix
}

// Find returns the category with id, or false when the reference dangles.
func (ix CategoryIndex) Find(id string) (Category, bool) {
	c, ok := ix[id]
	return c, ok
}

// NameOf returns the category name or UncategorizedName.
func (ix CategoryIndex) NameOf(id string) string {
	if c, ok := ix.Find(id); ok {
		return c.Name
	}
	return UncategorizedName
}
