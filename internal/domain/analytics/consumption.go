package analytics

import (
	"sort"

	"github.com/jhoicas/getraenkekasse/internal/domain/entity"
)

// PersonTotal total de bebidas de una persona.
type PersonTotal struct {
	Name  string
	Total int
}

// PersonShare fracción de las bebidas de una persona que corresponde a un producto.
type PersonShare struct {
	Name  string
	Count int
	Share float64
}

// ConsumptionStats quién bebe qué.
//
// Absolute va en orden ascendente por total. Relative[producto] sigue exactamente
// el mismo orden de personas que Absolute (incluye las personas con 0 de ese
// producto) para que ambos gráficos queden alineados. Products lista los
// productos comprados en orden alfabético.
type ConsumptionStats struct {
	Absolute []PersonTotal
	Products []string
	Relative map[string][]PersonShare
}

type personProduct struct {
	person, product string
}

// PersonProductStats cuenta compras por (persona, producto) y deriva totales y proporciones.
func PersonProductStats(rows []entity.LedgerRow) ConsumptionStats {
	counts := make(map[personProduct]int)
	personIndex := make(map[string]int)
	absolute := make([]PersonTotal, 0)
	productSet := make(map[string]bool)

	for _, r := range rows {
		if !r.IsPurchase() {
			continue
		}
		name := r.Buyer()
		counts[personProduct{name, r.ProductName}]++
		productSet[r.ProductName] = true

		i, ok := personIndex[name]
		if !ok {
			i = len(absolute)
			personIndex[name] = i
			absolute = append(absolute, PersonTotal{Name: name})
		}
		absolute[i].Total++
	}
	sort.SliceStable(absolute, func(a, b int) bool { return absolute[a].Total < absolute[b].Total })

	products := make([]string, 0, len(productSet))
	for p := range productSet {
		products = append(products, p)
	}
	sort.Strings(products)

	relative := make(map[string][]PersonShare, len(products))
	for _, product := range products {
		shares := make([]PersonShare, len(absolute))
		for i, person := range absolute {
			n := counts[personProduct{person.Name, product}]
			// person.Total > 0: solo aparecen personas con al menos una compra.
			shares[i] = PersonShare{
				Name:  person.Name,
				Count: n,
				Share: float64(n) / float64(person.Total),
			}
		}
		relative[product] = shares
	}

	return ConsumptionStats{
		Absolute: absolute,
		Products: products,
		Relative: relative,
	}
}
