package routers

import (
	"net/http"

	"splitmate/internal/api/handlers/groups"
)

func groupsRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/groups/create", groups.CreateGroupHandler)

	mux.HandleFunc("/groups/", groups.GetMyGroupsHandler)

	mux.HandleFunc("/groups/{id}", groups.GetGroupByIDHandler)

	mux.HandleFunc("/groups/update/{id}", groups.UpdateGroupHandler)

	mux.HandleFunc("/groups/{id}/members", groups.ManageMembersHandler)

	mux.HandleFunc("/groups/delete/{id}", groups.DeleteGroupHandler)

	return mux
}
