package domain

// RecordKey é a chave padrão do registro único de progresso no Store.
const RecordKey = "progress"

// TripProgress é o progresso de uma viagem exibida na UI.
type TripProgress struct {
	Image      string `json:"image"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Percentage int    `json:"percentage"`
}

// ProgressState é o registro compartilhado por todas as instâncias.
//
// A ordem dos campos define a ordem da serialização JSON, e portanto o ETag.
// Não reordene sem aceitar que todos os ETags emitidos mudam.
type ProgressState struct {
	Trips                 []TripProgress `json:"trips"`
	ClickCount            int64          `json:"clickCount"`
	GlobalHighestProgress int            `json:"globalHighestProgress"`
	LastClickTime         int64          `json:"lastClickTime"`
}

// DefaultState é o estado usado quando o Store ainda não tem registro.
// Retorna sempre uma cópia nova (o chamador pode mutar à vontade).
func DefaultState() ProgressState {
	return ProgressState{
		Trips: []TripProgress{
			{
				Image:      "/images/trips/bali.jpg",
				Title:      "Bali Island Escape",
				Status:     "25% completed",
				Percentage: 25,
			},
			{
				Image:      "/images/trips/kyoto.jpg",
				Title:      "Kyoto Temples and Tea",
				Status:     "10% completed",
				Percentage: 10,
			},
		},
		ClickCount:            0,
		GlobalHighestProgress: 25,
		LastClickTime:         0,
	}
}

// Patch é uma atualização parcial já validada.
// Campo nil = ausente no payload (mantém o valor atual).
type Patch struct {
	Trips                 *[]TripProgress
	ClickCount            *int64
	GlobalHighestProgress *int
	LastClickTime         *int64
}

// Empty indica que nenhum campo conhecido veio no payload.
func (p Patch) Empty() bool {
	return p.Trips == nil && p.ClickCount == nil && p.GlobalHighestProgress == nil && p.LastClickTime == nil
}
