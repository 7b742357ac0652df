package enrich

// Default vocabularies for the text-analysis stages. Each can be overridden
// from configuration; these defaults cover the common ground.

// DefaultSkills is the technology vocabulary matched by the extraction
// stage (case-insensitive, whole-term).
var DefaultSkills = []string{
	// languages
	"python", "javascript", "typescript", "java", "c++", "c#", "go", "golang",
	"rust", "ruby", "php", "swift", "kotlin", "scala", "elixir", "haskell",
	// frontend
	"react", "vue", "angular", "svelte", "next.js", "html", "css", "tailwind",
	// backend
	"node.js", "django", "flask", "fastapi", "rails", "spring", "laravel",
	".net", "gin",
	// data stores
	"postgresql", "postgres", "mysql", "mongodb", "redis", "elasticsearch",
	"sqlite", "cassandra", "dynamodb",
	// cloud and infra
	"aws", "azure", "gcp", "docker", "kubernetes", "k8s", "terraform",
	"ansible", "helm", "prometheus", "grafana", "github actions",
	// plumbing
	"graphql", "grpc", "rest", "kafka", "rabbitmq", "spark", "airflow",
	"linux", "bash", "nginx", "git",
	// mobile and ML
	"react native", "flutter", "ios", "android",
	"tensorflow", "pytorch", "pandas", "numpy", "machine learning",
	// practice
	"microservices", "serverless", "ci/cd", "tdd", "websockets", "oauth", "jwt",
}

// DefaultRedFlags maps warning categories to the phrases that trigger them.
// A matched phrase contributes its category tag once and a sentiment
// penalty per distinct phrase.
var DefaultRedFlags = map[string][]string{
	"compensation": {
		"unpaid", "no salary", "work for equity", "exposure", "sweat equity",
		"deferred compensation", "commission only", "potential to earn",
		"unlimited earning potential",
	},
	"culture": {
		"we're like a family", "family atmosphere", "work hard play hard",
		"pizza parties", "ping pong table", "beer on tap", "fast paced startup",
		"rockstar", "ninja", "guru", "wizard", "10x engineer", "unicorn",
	},
	"stability": {
		"pre-revenue", "pending funding", "about to close funding",
		"stealth startup", "equity until funding", "runway permitting",
		"pre-seed", "bootstrapped for now",
	},
	"management": {
		"no room for error", "zero mistakes", "flawless execution",
		"only the best", "top talent only", "elite performance",
		"little to no guidance", "figure it out", "hit the ground running",
		"wear many hats", "many hats", "jack of all trades",
	},
	"workload": {
		"unlimited overtime", "long hours expected", "nights and weekends",
		"must be available 24/7", "on call 24/7", "hustle culture", "grind",
		"crunch time", "all hands on deck", "eat sleep code",
		"aggressive timeline",
	},
	"legitimacy": {
		"registration fee", "training fee", "pay to apply",
		"upfront investment", "wire transfer", "western union",
		"processing fee", "pay for your own equipment",
	},
}

// PositiveIndicators nudge the sentiment score up.
var PositiveIndicators = []string{
	"competitive salary", "401k", "health insurance", "benefits",
	"flexible hours", "work life balance", "pto", "vacation",
	"professional development", "mentorship", "growth opportunities",
	"collaborative", "supportive",
}

// NegativeIndicators nudge the sentiment score down without raising a flag.
var NegativeIndicators = []string{
	"urgent", "immediately available", "asap", "immediate start",
	"tight deadline", "pressure", "stress",
}

// Experience phrase buckets. A phrase appears in exactly one bucket so a
// score tie between buckets is meaningful (ties resolve toward the more
// senior bucket).
var (
	juniorPhrases = []string{
		"junior", "jr", "entry level", "entry-level", "graduate", "new grad",
		"recent graduate", "intern", "internship", "early career", "trainee",
		"apprentice", "0-2 years",
	}
	midPhrases = []string{
		"mid level", "mid-level", "intermediate", "2-5 years", "3+ years",
		"3-5 years",
	}
	seniorPhrases = []string{
		"senior", "sr", "sr.", "5+ years", "5-10 years", "expert", "advanced",
		"architect",
	}
	leadPhrases = []string{
		"lead", "tech lead", "technical lead", "team lead", "principal",
		"staff engineer", "staff", "distinguished", "head of", "director",
		"vp", "vice president", "cto", "10+ years",
	}
)

// Remote-indicator phrases for the extraction stage.
var remotePhrases = []string{
	"remote", "work from home", "wfh", "distributed", "remote-first",
	"fully remote", "100% remote", "remote work", "anywhere",
}
