package usecase

// Upstream-shaped payloads shared by the harvest and load tests.

const scoreboardPayload = `{
  "resource": "scoreboardv2",
  "parameters": {"GameDate": "01/15/2024", "LeagueID": "00"},
  "resultSets": [
    {
      "name": "GameHeader",
      "headers": ["GAME_ID", "GAME_STATUS_TEXT", "HOME_TEAM_ID", "VISITOR_TEAM_ID", "SEASON_TYPE_ID"],
      "rowSet": [
        ["0022300123", "Final", 1610612747, 1610612738, "Regular Season"],
        ["0012300001", "Final", 1610612737, 1610612764, "Pre Season"]
      ]
    }
  ]
}`

const summaryPayload = `{
  "resource": "boxscoresummaryv2",
  "parameters": {"GameID": "0022300123"},
  "resultSets": [
    {
      "name": "GameSummary",
      "headers": ["GAME_ID", "SEASON", "GAME_DATE_EST", "HOME_TEAM_ID", "VISITOR_TEAM_ID", "GAME_STATUS_TEXT"],
      "rowSet": [["0022300123", "2023", "2024-01-15T00:00:00", 1610612747, 1610612738, "Final"]]
    },
    {
      "name": "LineScore",
      "headers": ["TEAM_ID", "TEAM_ABBREVIATION", "PTS"],
      "rowSet": [[1610612747, "LAL", 114], [1610612738, "BOS", 105]]
    },
    {
      "name": "Officials",
      "headers": ["FIRST_NAME", "LAST_NAME"],
      "rowSet": [["Scott", "Foster"], ["Tony", "Brothers"], ["J.B.", "DeRosa"]]
    },
    {
      "name": "InactivePlayers",
      "headers": ["PLAYER_ID", "TEAM_ID", "FIRST_NAME", "LAST_NAME"],
      "rowSet": [[201939, 1610612747, "Stephen", "Curry"]]
    }
  ]
}`

const boxTradPayload = `{
  "resource": "boxscoretraditionalv2",
  "parameters": {"GameID": "0022300123"},
  "resultSets": [
    {
      "name": "PlayerStats",
      "headers": ["GAME_ID", "TEAM_ID", "PLAYER_ID", "START_POSITION"],
      "rowSet": [
        ["0022300123", 1610612747, 101, "F"],
        ["0022300123", 1610612747, 102, "F"],
        ["0022300123", 1610612747, 103, "C"],
        ["0022300123", 1610612747, 104, "G"],
        ["0022300123", 1610612747, 105, "G"],
        ["0022300123", 1610612747, 106, ""],
        ["0022300123", 1610612738, 201, "F"],
        ["0022300123", 1610612738, 202, "F"],
        ["0022300123", 1610612738, 203, "C"],
        ["0022300123", 1610612738, 204, "G"],
        ["0022300123", 1610612738, 205, "G"],
        ["0022300123", 1610612738, 206, ""]
      ]
    }
  ]
}`

const pbpPayload = `{
  "resource": "playbyplayv2",
  "parameters": {"GameID": "0022300123"},
  "resultSets": [
    {
      "name": "PlayByPlay",
      "headers": ["GAME_ID", "EVENTNUM", "PERIOD", "PCTIMESTRING", "EVENTMSGTYPE", "EVENTMSGACTIONTYPE", "PLAYER1_TEAM_ID", "PLAYER1_ID", "PLAYER2_ID", "HOMEDESCRIPTION"],
      "rowSet": [
        ["0022300123", 1, 1, "12:00", 12, 0, null, null, null, "Period Start"],
        ["0022300123", 10, 1, "6:00", 8, 0, 1610612747, 101, 106, "SUB: 106 FOR 101"],
        ["0022300123", 20, 1, "0:00", 13, 0, null, null, null, "Period End"]
      ]
    }
  ]
}`

const shotPayload = `{
  "resource": "shotchartdetail",
  "parameters": [{"GameID": "0022300123"}],
  "resultSets": [
    {
      "name": "Shot_Chart_Detail",
      "headers": ["GAME_ID", "GAME_EVENT_ID", "PLAYER_ID", "TEAM_ID", "PERIOD", "LOC_X", "LOC_Y", "SHOT_MADE_FLAG"],
      "rowSet": [
        ["0022300123", 7, 104, 1610612747, 1, -10, 140, 1],
        ["0022300123", 9, 204, 1610612738, 1, 55, 30, 0]
      ]
    }
  ]
}`
