package dag

import (
	"strconv"

	"github.com/nao1215/tweetcollector/internal/config"
)

// Task ids of the tweet collection graph.
const (
	ScrapeTaskPrefix = "get_old_tweets_"
	MergeTaskID      = "merge_get_old_tweets"
	LookupTaskID     = "lookup_tweets"
	ValidateTaskID   = "validate_get_old_tweets"
)

// Path templates shared by the producing and the consuming task.
const (
	ScrapeOutputTemplate = "{{ params.output_folder}}/{{task.task_id}}/output_{{task.task_id}}_{{ ds }}.csv"
	ScrapeGlobTemplate   = "{{ params.output_folder}}/get_old_tweets_*/output_get_old_tweets_*_{{ ds }}.csv"
	MergedTemplate       = "{{ params.output_folder}}/get_old_tweets_merged/output_get_old_tweets_{{ ds }}.csv"
	LookupTemplate       = "{{ params.output_folder}}/lookup/output_lookup_{{ ds }}.json"
	ErrorsTemplate       = "{{ params.output_folder}}/lookup/errors_lookup_{{ ds }}.json"
)

const scrapeCommand = `
mkdir -p {{ params.output_folder}}/{{task.task_id}}
{{ params.scrape_command }} --querysearch "{{ params.query_search }}" \
    --since "{{ ds }}" --until "{{ next_ds }}" \
    --output "` + ScrapeOutputTemplate + `"{% if params.lang_search %} \
    --lang "{{ params.lang_search }}"{% endif %}
`

const mergeCommand = `
{{ params.binary }} merge \
    ` + ScrapeGlobTemplate + ` \
    -o ` + MergedTemplate + `
`

const lookupCommand = `
{{ params.binary }} lookup \
    ` + MergedTemplate + ` \
    ` + LookupTemplate + ` \
    ` + ErrorsTemplate + `{% if params.twitter_cred %} \
    --twitter_cred "{{ params.twitter_cred }}"{% endif %}
`

const validateCommand = `
{{ params.binary }} validate \
    ` + MergedTemplate + ` \
    ` + LookupTemplate + `
`

// TweetCollector builds the collection graph described by cfg. A non-empty
// credentialsPath is passed to the lookup task as --twitter_cred; otherwise
// the task inherits TWITTER_CREDENTIALS from the environment.
func TweetCollector(cfg config.DAGConfig, credentialsPath string) (*Graph, error) {
	schedule, err := ParseSchedule(cfg.Schedule)
	if err != nil {
		return nil, err
	}

	g := NewGraph(cfg.ID, schedule, cfg.StartDate)
	g.Owner = cfg.Owner
	g.Params["output_folder"] = cfg.OutputFolder
	g.Params["binary"] = cfg.Binary
	if cfg.Binary == "" {
		g.Params["binary"] = config.AppName
	}
	g.Params["twitter_cred"] = credentialsPath

	tasks := make([]Task, 0, cfg.ScrapeRuns+3)
	for i := range cfg.ScrapeRuns {
		tasks = append(tasks, Task{
			ID:      ScrapeTaskPrefix + strconv.Itoa(i),
			Kind:    KindScrape,
			Command: scrapeCommand,
			Params: map[string]any{
				"query_search":   cfg.QuerySearch,
				"lang_search":    cfg.LangSearch,
				"scrape_command": cfg.ScrapeCommand,
			},
		})
	}
	tasks = append(tasks,
		Task{ID: MergeTaskID, Kind: KindMerge, Command: mergeCommand},
		Task{ID: LookupTaskID, Kind: KindLookup, Command: lookupCommand},
		Task{ID: ValidateTaskID, Kind: KindValidate, Command: validateCommand},
	)
	for _, t := range tasks {
		if err := g.AddTask(t); err != nil {
			return nil, err
		}
	}

	edges := make([]Edge, 0, cfg.ScrapeRuns+2)
	for i := range cfg.ScrapeRuns {
		edges = append(edges, Edge{Upstream: ScrapeTaskPrefix + strconv.Itoa(i), Downstream: MergeTaskID})
	}
	edges = append(edges,
		Edge{Upstream: MergeTaskID, Downstream: LookupTaskID},
		Edge{Upstream: LookupTaskID, Downstream: ValidateTaskID},
	)
	for _, e := range edges {
		if err := g.SetUpstream(e.Upstream, e.Downstream); err != nil {
			return nil, err
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
