package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type SchedulePublishedMailData struct {
	AdminName      string `json:"adminName"`
	ScheduleName   string `json:"scheduleName"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	TotalProcessed int    `json:"totalProcessed"`
	TotalSuccess   int    `json:"totalSuccess"`
	TotalErrors    int    `json:"totalErrors"`
}
