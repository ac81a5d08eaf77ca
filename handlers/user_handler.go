package handlers

import (
	"net/http"

	"github.com/Dosada05/esport-arena/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(us services.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

// GetUser godoc
// @Summary Публичный профиль пользователя
// @Tags users
// @Produce json
// @Param userID path string true "User ID (uuid)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Utilisateur non trouvé"
// @Router /users/{userID} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	user.Email = ""
	respond(w, r, http.StatusOK, jsonResponse{"user": user})
}
