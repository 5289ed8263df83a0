package puter

// Driver call method used for chat completions.
const methodComplete = "complete"

// signInRequest is the body of POST /auth/sign-in.
type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// signInResponse is the part of the sign-in response we rely on.
type signInResponse struct {
	Token string `json:"token"`
}

// driverCallRequest is the body of POST /drivers/call.
type driverCallRequest struct {
	Interface string         `json:"interface"`
	Driver    string         `json:"driver"`
	Method    string         `json:"method"`
	Args      completionArgs `json:"args"`
}

// completionArgs carries the chat messages and sampling parameters.
type completionArgs struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

// chatMessage is a single chat turn.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
