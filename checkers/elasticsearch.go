package checkers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/jonwraymond/healthops/health"
)

// Elasticsearch maps cluster health colour to a status: green is Healthy,
// yellow Degraded, red Unhealthy.
type Elasticsearch struct {
	name     string
	address  string
	user     string
	password string
	client   *http.Client
}

// NewElasticsearch creates an Elasticsearch checker. Basic authentication is
// used only when both user and password are set.
func NewElasticsearch(name, address, user, password string, client *http.Client) *Elasticsearch {
	return &Elasticsearch{
		name:     name,
		address:  address,
		user:     user,
		password: password,
		client:   client,
	}
}

// Name returns the check name.
func (c *Elasticsearch) Name() string {
	return c.name
}

type clusterHealth struct {
	ClusterName   string `json:"cluster_name"`
	Status        string `json:"status"`
	NumberOfNodes int    `json:"number_of_nodes"`
}

// Check requests _cluster/health.
func (c *Elasticsearch) Check(ctx context.Context) health.Result {
	cfg := elasticsearch.Config{
		Addresses:    []string{c.address},
		DisableRetry: true,
	}
	if c.user != "" && c.password != "" {
		cfg.Username = c.user
		cfg.Password = c.password
	}
	if c.client != nil && c.client.Transport != nil {
		cfg.Transport = c.client.Transport
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return health.Unhealthy(fmt.Sprintf("create client: %v", err), err)
	}

	res, err := es.Cluster.Health(es.Cluster.Health.WithContext(ctx))
	if err != nil {
		return health.Failure("cluster health request", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		err := fmt.Errorf("%w: %d", ErrUnexpectedStatus, res.StatusCode)
		return health.Unhealthy(fmt.Sprintf("cluster health returned %s", res.Status()), err)
	}

	var ch clusterHealth
	if err := json.NewDecoder(res.Body).Decode(&ch); err != nil {
		return health.Unhealthy("invalid cluster health response", err)
	}

	details := map[string]any{
		"cluster": ch.ClusterName,
		"status":  ch.Status,
		"nodes":   ch.NumberOfNodes,
	}
	switch ch.Status {
	case "green":
		return health.Healthy("cluster status is green").WithDetails(details)
	case "yellow":
		return health.Degraded("cluster status is yellow").WithDetails(details)
	default:
		return health.Unhealthy(fmt.Sprintf("cluster status is %s", ch.Status), ErrClusterRed).WithDetails(details)
	}
}
