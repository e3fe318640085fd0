package api

import "time"

// APIInfo is the data member of GET /.
type APIInfo struct {
	Title       string    `json:"title"`
	APIVersion  string    `json:"api_version"`
	Revision    string    `json:"revision"`
	LicenseName string    `json:"license_name"`
	LicenseURL  string    `json:"license_url"`
	Hostname    string    `json:"hostname"`
	Timestamp   time.Time `json:"timestamp"`
}

type AgentOS struct {
	Name     string `json:"name"`
	Platform string `json:"platform"`
	Version  string `json:"version"`
}

// Agent is one item of GET /agents.
type Agent struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	IP            string    `json:"ip"`
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	NodeName      string    `json:"node_name"`
	DateAdd       time.Time `json:"dateAdd"`
	LastKeepAlive time.Time `json:"lastKeepAlive"`
	OS            AgentOS   `json:"os"`
}

// AgentList is the data member of GET /agents.
type AgentList struct {
	Items       []Agent `json:"affected_items"`
	Total       int     `json:"total_affected_items"`
	TotalFailed int     `json:"total_failed_items"`
}
