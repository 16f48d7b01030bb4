package grpcserver

type MutateRequest struct {
	ID    int64 `json:"id"`
	Delta int64 `json:"delta"`
}

type IDRequest struct {
	ID int64 `json:"id"`
}

type RangeRequest struct {
	Lo int64 `json:"lo"`
	Hi int64 `json:"hi"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

// EventResponse is (0, 0) when no neighbour exists.
type EventResponse struct {
	ID    int64 `json:"id"`
	Count int64 `json:"count"`
}
