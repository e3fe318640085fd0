package paths

// Binaries shipped with the service.
const (
	AgentControl   = "agent_control"
	AgentGroups    = "agent_groups"
	AgentUpgrade   = "agent_upgrade"
	ClearStats     = "clear_stats"
	ClusterControl = "cluster_control"
	ManageAgents   = "manage_agents"
	Control        = "fortishield_control"
	Agentlessd     = "fortishield-agentlessd"
	Analysisd      = "fortishield-analysisd"
	Apid           = "fortishield-apid"
	Authd          = "fortishield-authd"
	Clusterd       = "fortishield-clusterd"
	Csyslogd       = "fortishield-csyslogd"
	DB             = "fortishield-db"
	Dbd            = "fortishield-dbd"
	Execd          = "fortishield-execd"
	Integratord    = "fortishield-integratord"
	Logcollector   = "fortishield-logcollector"
	Logtest        = "fortishield-logtest"
	Maild          = "fortishield-maild"
	Modulesd       = "fortishield-modulesd"
	Monitord       = "fortishield-monitord"
	Regex          = "fortishield-regex"
	Remoted        = "fortishield-remoted"
	Reportd        = "fortishield-reportd"
	Syscheckd      = "fortishield-syscheckd"
	AgentAuth      = "agent-auth"
	Agentd         = "fortishield-agentd"
)

// Binaries lists every known binary in a stable order.
var Binaries = []string{
	AgentControl, AgentGroups, AgentUpgrade, ClearStats, ClusterControl, ManageAgents, Control,
	Agentlessd, Analysisd, Apid, Authd, Clusterd, Csyslogd, DB, Dbd, Execd, Integratord,
	Logcollector, Logtest, Maild, Modulesd, Monitord, Regex, Remoted, Reportd, Syscheckd,
	AgentAuth, Agentd,
}

// Binary returns the path of a binary, for example Binary(Analysisd).
func (l Layout) Binary(name string) string {
	return l.join(l.Bin, name)
}

func (l Layout) ConfigFile() string {
	return l.join(l.Config, "ossec.conf")
}

func (l Layout) InternalOptions() string {
	return l.join(l.Config, "internal_options.conf")
}

func (l Layout) LocalInternalOptions() string {
	return l.join(l.Config, "local_internal_options.conf")
}

func (l Layout) ClientKeys() string {
	return l.join(l.Config, "client.keys")
}

func (l Layout) SSLManagerCert() string {
	return l.join(l.Config, "sslmanager.cert")
}

func (l Layout) LocalDecoders() string {
	return l.join(l.Config, "decoders", "local_decoder.xml")
}

func (l Layout) LocalRules() string {
	return l.join(l.Config, "rules", "local_rules.xml")
}

func (l Layout) DefaultAgentConf() string {
	return l.join(l.Config, "shared", "default", "agent.conf")
}

func (l Layout) OssecLog() string {
	return l.join(l.Logs, "ossec.log")
}

// ActiveResponsesLog is kept in its own directory on Windows.
func (l Layout) ActiveResponsesLog() string {
	if l.Platform == Windows {
		return l.join(l.Logs, "active-response", "active-responses.log")
	}
	return l.join(l.Logs, "active-responses.log")
}

func (l Layout) ClusterLog() string {
	return l.join(l.Logs, "cluster.log")
}

func (l Layout) APILog() string {
	return l.join(l.Logs, "api.log")
}

func (l Layout) IntegrationsLog() string {
	return l.join(l.Logs, "integrations.log")
}

func (l Layout) AlertsLog() string {
	return l.join(l.Logs, "alerts", "alerts.log")
}

func (l Layout) AlertsJSON() string {
	return l.join(l.Logs, "alerts", "alerts.json")
}

func (l Layout) ArchivesLog() string {
	return l.join(l.Logs, "archives", "archives.log")
}

func (l Layout) ArchivesJSON() string {
	return l.join(l.Logs, "archives", "archives.json")
}

func (l Layout) GlobalDB() string {
	return l.join(l.Databases, "global.db")
}

// ManagerLocalDB is the database of agent 000, the manager.
func (l Layout) ManagerLocalDB() string {
	return l.AgentDB("000")
}

// AgentDB returns the database of an agent. An empty id means the manager.
func (l Layout) AgentDB(id string) string {
	if id == "" {
		id = "000"
	}
	return l.join(l.Databases, id+".db")
}

func (l Layout) CVEDB() string {
	return l.join(l.Root, "queue", "vulnerabilities", "cve.db")
}

func (l Layout) LocalFIMDB() string {
	return l.join(l.Root, "queue", "fim", "db", "fim.db")
}

func (l Layout) LocalSyscollectorDB() string {
	return l.join(l.Root, "queue", "syscollector", "db", "local.db")
}

// Entry is one named path.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Entries lists every named path of the layout, directories first.
func (l Layout) Entries() []Entry {
	e := []Entry{
		{"root", l.Root},
		{"bin", l.Bin},
		{"config", l.Config},
		{"logs", l.Logs},
		{"databases", l.Databases},
	}
	for _, b := range Binaries {
		e = append(e, Entry{"bin/" + b, l.Binary(b)})
	}
	for _, f := range []struct {
		name string
		fn   func() string
	}{
		{"config/ossec.conf", l.ConfigFile},
		{"config/internal_options.conf", l.InternalOptions},
		{"config/local_internal_options.conf", l.LocalInternalOptions},
		{"config/client.keys", l.ClientKeys},
		{"config/sslmanager.cert", l.SSLManagerCert},
		{"config/local_decoder.xml", l.LocalDecoders},
		{"config/local_rules.xml", l.LocalRules},
		{"config/agent.conf", l.DefaultAgentConf},
		{"logs/ossec.log", l.OssecLog},
		{"logs/active-responses.log", l.ActiveResponsesLog},
		{"logs/cluster.log", l.ClusterLog},
		{"logs/api.log", l.APILog},
		{"logs/integrations.log", l.IntegrationsLog},
		{"logs/alerts.log", l.AlertsLog},
		{"logs/alerts.json", l.AlertsJSON},
		{"logs/archives.log", l.ArchivesLog},
		{"logs/archives.json", l.ArchivesJSON},
		{"db/global.db", l.GlobalDB},
		{"db/000.db", l.ManagerLocalDB},
		{"db/cve.db", l.CVEDB},
		{"db/fim.db", l.LocalFIMDB},
		{"db/syscollector.db", l.LocalSyscollectorDB},
	} {
		e = append(e, Entry{f.name, f.fn()})
	}
	return e
}
