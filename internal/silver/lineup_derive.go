package silver

import (
	"sort"

	"github.com/hooplake/hooplake/internal/domain/lineup"
	"github.com/hooplake/hooplake/internal/domain/pbp"
)

// substitution is EVENTMSGTYPE 8: PLAYER1 leaves the court, PLAYER2 enters.
const actionSubstitution = 8

// DeriveLineupStints walks ordered play-by-play events and splits each team's
// game into 5-player stints, starting from the known starters. Stints for the
// same lineup within one period accumulate seconds. A team whose on-court set
// drifts away from 5 players (substitution data gaps) stops producing stints
// for the rest of the game rather than emitting invalid lineups.
func DeriveLineupStints(gameID string, startersByTeam map[int64][]int64, events []pbp.Event) []lineup.Stint {
	type teamState struct {
		onCourt    map[int64]struct{}
		stintStart float64
		broken     bool
	}

	states := make(map[int64]*teamState, len(startersByTeam))
	for teamID, starters := range startersByTeam {
		if len(starters) != 5 {
			continue
		}
		onCourt := make(map[int64]struct{}, 5)
		for _, id := range starters {
			onCourt[id] = struct{}{}
		}
		states[teamID] = &teamState{onCourt: onCourt}
	}
	if len(states) == 0 {
		return nil
	}

	seconds := make(map[int64]map[int]map[string]float64)
	record := func(teamID int64, period int, state *teamState, until float64) {
		if state.broken || until <= state.stintStart {
			return
		}
		key := lineup.PlayerKey(onCourtIDs(state.onCourt))
		if seconds[teamID] == nil {
			seconds[teamID] = make(map[int]map[string]float64)
		}
		if seconds[teamID][period] == nil {
			seconds[teamID][period] = make(map[string]float64)
		}
		seconds[teamID][period][key] += until - state.stintStart
	}

	currentPeriod := 0
	for _, event := range events {
		if event.Period != currentPeriod {
			if currentPeriod > 0 {
				limit := pbp.PeriodLengthSeconds(currentPeriod)
				for teamID, state := range states {
					record(teamID, currentPeriod, state, limit)
				}
			}
			currentPeriod = event.Period
			for _, state := range states {
				state.stintStart = 0
			}
		}

		if event.ActionType == nil || *event.ActionType != actionSubstitution {
			continue
		}
		if event.TeamID == nil || event.Player1ID == nil || event.Player2ID == nil {
			continue
		}
		state, ok := states[*event.TeamID]
		if !ok || state.broken {
			continue
		}

		record(*event.TeamID, event.Period, state, event.SecondsElapsed)

		if _, present := state.onCourt[*event.Player1ID]; !present {
			state.broken = true
			continue
		}
		delete(state.onCourt, *event.Player1ID)
		state.onCourt[*event.Player2ID] = struct{}{}
		if len(state.onCourt) != 5 {
			state.broken = true
			continue
		}
		state.stintStart = event.SecondsElapsed
	}

	if currentPeriod > 0 {
		limit := pbp.PeriodLengthSeconds(currentPeriod)
		for teamID, state := range states {
			record(teamID, currentPeriod, state, limit)
		}
	}

	return stintsFromSeconds(gameID, seconds)
}

func onCourtIDs(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func stintsFromSeconds(gameID string, seconds map[int64]map[int]map[string]float64) []lineup.Stint {
	var out []lineup.Stint
	for teamID, byPeriod := range seconds {
		for period, byLineup := range byPeriod {
			for key, played := range byLineup {
				ids, ok := lineup.ParsePlayerKey(key)
				if !ok {
					continue
				}
				stint := lineup.Stint{
					GameID:        gameID,
					TeamID:        teamID,
					Period:        period,
					PlayerIDs:     ids,
					SecondsPlayed: played,
				}
				if err := stint.Validate(); err != nil {
					continue
				}
				out = append(out, stint)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TeamID != out[j].TeamID {
			return out[i].TeamID < out[j].TeamID
		}
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		return lineup.PlayerKey(out[i].PlayerIDs) < lineup.PlayerKey(out[j].PlayerIDs)
	})
	return out
}
