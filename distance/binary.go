package distance

// Binary distance metrics for boolean vectors.
// Non-zero values are true, zero values are false.

// truthTable counts the four agreement cases between two boolean vectors.
type truthTable struct {
	tt, tf, ft, ff int
}

func tabulate(x, y []float32) truthTable {
	var t truthTable
	for i := range x {
		xTrue := x[i] != 0
		yTrue := y[i] != 0
		switch {
		case xTrue && yTrue:
			t.tt++
		case xTrue:
			t.tf++
		case yTrue:
			t.ft++
		default:
			t.ff++
		}
	}
	return t
}

func (t truthTable) disagree() int { return t.tf + t.ft }

func (t truthTable) total() int { return t.tt + t.tf + t.ft + t.ff }

func ratio(num, denom int) float32 {
	if denom == 0 {
		return 0
	}
	return float32(num) / float32(denom)
}

// Hamming computes the proportion of disagreeing components.
func Hamming(x, y []float32) float32 {
	t := tabulate(x, y)
	return ratio(t.disagree(), t.total())
}

// Jaccard computes the Jaccard distance.
// D(x, y) = (ntf + nft) / (ntt + ntf + nft)
func Jaccard(x, y []float32) float32 {
	t := tabulate(x, y)
	return ratio(t.disagree(), t.tt+t.disagree())
}

// Dice computes the Dice dissimilarity.
// D(x, y) = (ntf + nft) / (2 * ntt + ntf + nft)
func Dice(x, y []float32) float32 {
	t := tabulate(x, y)
	return ratio(t.disagree(), 2*t.tt+t.disagree())
}

// Kulsinski computes the Kulsinski dissimilarity.
// D(x, y) = (ntf + nft - ntt + n) / (ntf + nft + n)
func Kulsinski(x, y []float32) float32 {
	t := tabulate(x, y)
	n := t.total()
	return ratio(t.disagree()-t.tt+n, t.disagree()+n)
}

// RogersTanimoto computes the Rogers-Tanimoto dissimilarity, which is
// also the Sokal-Michener dissimilarity.
// D(x, y) = 2 * (ntf + nft) / (n + ntf + nft)
func RogersTanimoto(x, y []float32) float32 {
	t := tabulate(x, y)
	return ratio(2*t.disagree(), t.total()+t.disagree())
}

// RussellRao computes the Russell-Rao dissimilarity.
// D(x, y) = (n - ntt) / n
func RussellRao(x, y []float32) float32 {
	t := tabulate(x, y)
	return ratio(t.total()-t.tt, t.total())
}

// SokalSneath computes the Sokal-Sneath dissimilarity.
// D(x, y) = 2 * (ntf + nft) / (ntt + 2 * (ntf + nft))
func SokalSneath(x, y []float32) float32 {
	t := tabulate(x, y)
	return ratio(2*t.disagree(), t.tt+2*t.disagree())
}

// Yule computes the Yule dissimilarity.
// D(x, y) = 2 * ntf * nft / (ntt * nff + ntf * nft)
func Yule(x, y []float32) float32 {
	t := tabulate(x, y)
	return ratio(2*t.tf*t.ft, t.tt*t.ff+t.tf*t.ft)
}
