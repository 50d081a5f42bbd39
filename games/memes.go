package games

// Each player joins the shared lobby with a username and avatar, then marks
// themselves ready; once three or more players are all ready, the game starts
// One player per round is chosen at random as the judge
// The judge picks a photo card (or asks for a random one); everyone else
// plays one caption card from their hand of seven
// The judge reads the pairings and picks a winning caption; the winner keeps
// the photo card as a trophy
// Hands are refilled to seven between rounds, and rounds continue until the
// decks run out

// Display formats:
// The photo card large in the center, submitted captions fanned below it
// Each player's hand along the bottom edge, trophies as a small stack

// Implementation details:
// - Use websockets to push lobby/round state to every player after each change
// - Identify players by cookie on first connection
// - The judge never submits a caption; required submissions = players - 1
// - If the judge disconnects mid-round, throw the round away and deal again
