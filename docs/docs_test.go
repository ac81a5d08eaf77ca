package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestDocDescribesRoutes(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Paths       map[string]map[string]json.RawMessage `json:"paths"`
		Definitions map[string]json.RawMessage            `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	routes := map[string][]string{
		"/auth/register":                                       {"post"},
		"/auth/login":                                          {"post"},
		"/me":                                                  {"get"},
		"/users/{userID}":                                      {"get"},
		"/teams":                                               {"post"},
		"/teams/mine":                                          {"get"},
		"/teams/{teamID}":                                      {"get"},
		"/teams/{teamID}/members":                              {"post"},
		"/teams/{teamID}/members/{userID}":                     {"delete"},
		"/teams/{teamID}/logo":                                 {"post"},
		"/tournaments":                                         {"get", "post"},
		"/tournaments/{tournamentID}":                          {"get", "patch", "delete"},
		"/tournaments/{tournamentID}/status":                   {"patch"},
		"/tournaments/{tournamentID}/start":                    {"post"},
		"/tournaments/{tournamentID}/logo":                     {"post"},
		"/tournaments/{tournamentID}/phases":                   {"get", "post"},
		"/tournaments/{tournamentID}/participants":             {"get", "post"},
		"/tournaments/{tournamentID}/matches":                  {"get"},
		"/phases/{phaseID}":                                    {"patch", "delete"},
		"/participants/{participantID}":                        {"delete"},
		"/participants/{participantID}/check-in":               {"post"},
		"/matches/{matchID}":                                   {"get"},
		"/matches/{matchID}/schedule":                          {"patch"},
		"/matches/{matchID}/start":                             {"post"},
		"/matches/{matchID}/chat":                              {"get", "post"},
		"/matches/{matchID}/veto":                              {"get", "post", "delete"},
		"/admin/participants/{participantID}/check-in":         {"patch"},
		"/admin/participants/{participantID}/disqualification": {"patch"},
		"/admin/participants/{participantID}/seed":             {"patch"},
		"/admin/matches/{matchID}/score":                       {"patch"},
	}
	for path, methods := range routes {
		ops, ok := doc.Paths[path]
		if !assert.True(t, ok, "missing path %s", path) {
			continue
		}
		for _, m := range methods {
			assert.Contains(t, ops, m, "%s %s", m, path)
		}
	}

	for _, name := range []string{"services.CreateTournamentInput", "services.UpdateScoreInput", "models.TournamentFormat"} {
		assert.Contains(t, doc.Definitions, name)
	}
}
