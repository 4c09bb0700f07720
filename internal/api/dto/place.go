package dto

import "trip-planner-service/internal/domain"

type PlaceResponse struct {
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	PlaceRef string  `json:"place_ref"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

func NewPlaceResponse(p domain.Place) PlaceResponse {
	return PlaceResponse{
		Name:     p.Name,
		Address:  p.Address,
		PlaceRef: p.PlaceRef,
		Lat:      p.Lat,
		Lng:      p.Lng,
	}
}
