package handlers

import (
	"log"
	"net/http"

	"github.com/evoblast/evoblast-backend/models"
	"github.com/evoblast/evoblast-backend/repository"
	"github.com/evoblast/evoblast-backend/responses"
	"github.com/evoblast/evoblast-backend/utils"
)

// FetchRecentMatches lists the most recent finished matches from the
// match history store.
func FetchRecentMatches(w http.ResponseWriter, r *http.Request) {
	summaries, err := repository.ListRecentMatches(20)
	if err != nil {
		log.Println(err)
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to fetch matches."})
		return
	}
	utils.HandleSuccess(w, models.SuccessResponse(summaries))
}

// Status reports live server occupancy.
func (g *Gateway) Status(w http.ResponseWriter, r *http.Request) {
	utils.HandleSuccess(w, models.SuccessResponse(map[string]int{
		"clients": g.NumClients(),
		"matches": g.manager.Count(),
		"queued":  g.queue.Len(),
	}))
}
