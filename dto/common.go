package dto

import "reservas/response"

// PaginatedResponse is the typed shape of a list page
type PaginatedResponse[T any] struct {
	Data       T                   `json:"data"`
	Pagination response.Pagination `json:"pagination"`
}

// ListQuery holds the list filters of GET /reservas/:type
type ListQuery struct {
	Status        string `form:"status"`
	Resource      string `form:"resource"`
	AssignedTo    string `form:"assignedTo"`
	LinkedEventID *uint  `form:"linkedEventId"`
	From          string `form:"from"`
	To            string `form:"to"`
	Page          int    `form:"page" binding:"min=0"`
	Limit         int    `form:"limit" binding:"min=0,max=200"`
}
