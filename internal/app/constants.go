package app

// MinPlayersToStartGame defines the minimum number of occupied seats required to start a game.
// Fewer than two players would end the match before the first action.
const MinPlayersToStartGame = 2
