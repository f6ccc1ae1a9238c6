package services

import "context"

type versionGetter interface {
	APIVersion(ctx context.Context) (string, error)
}

// ZabbixProbe calls apiinfo.version, which requires no session.
type ZabbixProbe struct {
	client versionGetter
}

func NewZabbixProbe(c versionGetter) *ZabbixProbe {
	return &ZabbixProbe{client: c}
}

func (p *ZabbixProbe) Name() string {
	return "zabbix"
}

func (p *ZabbixProbe) Check(ctx context.Context) error {
	_, err := p.client.APIVersion(ctx)
	return err
}

type pinger interface {
	Ping(ctx context.Context) error
}

// ElasticProbe issues a GET on the cluster root.
type ElasticProbe struct {
	client pinger
}

func NewElasticProbe(c pinger) *ElasticProbe {
	return &ElasticProbe{client: c}
}

func (p *ElasticProbe) Name() string {
	return "elasticsearch"
}

func (p *ElasticProbe) Check(ctx context.Context) error {
	return p.client.Ping(ctx)
}
