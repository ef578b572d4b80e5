package health

import "context"

type Response struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version,omitempty"`
	Failing map[string]string `json:"failing,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}

// a dependency the health endpoint probes, such as postgres or redis
type Checker interface {
	Name() string
	Ping(ctx context.Context) error
}

// adapts a plain ping function into a Checker
type CheckFunc struct {
	Label string
	Fn    func(ctx context.Context) error
}

func (f CheckFunc) Name() string {
	return f.Label
}

func (f CheckFunc) Ping(ctx context.Context) error {
	return f.Fn(ctx)
}
