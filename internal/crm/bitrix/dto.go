package bitrix

import "encoding/json"

// RawLead is a lead record as returned by crm.lead.list. Timestamps stay
// unparsed here; interpretation happens in the leads package.
type RawLead struct {
	ID         string `json:"ID"`
	Name       string `json:"NAME"`
	Phone      string `json:"PHONE"`
	DateCreate string `json:"DATE_CREATE"`
}

type listLeadsResponse struct {
	Result []json.RawMessage `json:"result"`
}

type updateLeadRequest struct {
	ID     string           `json:"id"`
	Fields updateLeadFields `json:"fields"`
}

type updateLeadFields struct {
	Comments string `json:"COMMENTS"`
}

type updateLeadResponse struct {
	Result bool `json:"result"`
}

type addTaskRequest struct {
	Fields taskFields `json:"fields"`
}

type taskFields struct {
	Title         string `json:"TITLE"`
	Description   string `json:"DESCRIPTION"`
	Deadline      string `json:"DEADLINE"`
	ResponsibleID int    `json:"RESPONSIBLE_ID"`
}

// addTaskResponse keeps result raw: Bitrix answers tasks.task.add with either
// {"result":{"task":{"id":123}}} or a bare {"result":123}.
type addTaskResponse struct {
	Result json.RawMessage `json:"result"`
}
