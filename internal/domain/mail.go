package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type BalancingFinishedMailData struct {
	FullName             string  `json:"fullName"`
	EventName            string  `json:"eventName"`
	Balanced             bool    `json:"balanced"`
	TeamsCreated         int32   `json:"teamsCreated"`
	ParticipantsAssigned int32   `json:"participantsAssigned"`
	ObjectiveScore       float64 `json:"objectiveScore"`
}
