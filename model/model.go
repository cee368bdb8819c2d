package model

// Msg is the message exchanged with websocket clients.
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Message types.
const (
	MsgEnv     = "env"
	MsgEnvSet  = "envSet"
	MsgStart   = "start"
	MsgStarted = "started"
	MsgFrame   = "frame"
	MsgStop    = "stop"
	MsgStopped = "stopped"
	MsgFinish  = "finished"
	MsgHistory = "history"
	MsgError   = "error"
)

// RunRequest is the content of a start message.
type RunRequest struct {
	Model        string  `json:"model"`
	Level        int     `json:"level"`
	EndTime      float64 `json:"end_time"`
	TimeStep     float64 `json:"time_step"`
	OutputPoints int     `json:"output_points"`
	ParameterSet string  `json:"parameter_set"`
}

// Frame is a snapshot of a running capsule bed simulation.
type Frame struct {
	RunID         string    `json:"run_id"`
	Model         string    `json:"model"`
	Index         int       `json:"index"`
	Time          float64   `json:"time"`
	X             []float64 `json:"x"`
	HTF           []float64 `json:"htf"`
	Surface       []float64 `json:"surface"`
	Outlet        float64   `json:"outlet"`
	StateOfCharge float64   `json:"state_of_charge"`
	StoredEnergy  float64   `json:"stored_energy"`
}
