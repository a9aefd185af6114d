package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	baseURL     string
	concurrency int
	rounds      int
	timeout     time.Duration

	rootCmd = &cobra.Command{
		Use:   "bench",
		Short: "Concurrency check for friend-request acceptance",
		Long: `Registers two users per round, sends a friend request and fires
concurrent accept calls at it. Exactly one accept must succeed per round.`,
		RunE: runBench,
	}
)

func init() {
	rootCmd.Flags().StringVar(&baseURL, "base", "http://localhost:8080", "server base url")
	rootCmd.Flags().IntVarP(&concurrency, "concurrency", "n", 10, "concurrent accept calls per round")
	rootCmd.Flags().IntVarP(&rounds, "rounds", "r", 5, "number of rounds")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 8*time.Second, "http client timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// envelope 统一响应结构
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type session struct {
	UserID uint
	Token  string
}

type client struct {
	http *http.Client
	base string
}

func (c *client) call(ctx context.Context, method, path, token string, body interface{}) (*envelope, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return &env, nil
}

func (c *client) register(ctx context.Context) (*session, error) {
	name := "bench_" + uuid.NewString()[:8]
	env, err := c.call(ctx, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"email":           name + "@bench.local",
		"password":        "bench-password",
		"confirmPassword": "bench-password",
		"username":        name,
	})
	if err != nil {
		return nil, err
	}
	if env.Code != 0 {
		return nil, fmt.Errorf("register: %d %s", env.Code, env.Message)
	}
	var data struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, err
	}
	return &session{UserID: data.User.ID, Token: data.AccessToken}, nil
}

type roundResult struct {
	accepted int64
	notFound int64
	other    int64
	took     time.Duration
}

func (c *client) round(ctx context.Context) (*roundResult, error) {
	sender, err := c.register(ctx)
	if err != nil {
		return nil, err
	}
	receiver, err := c.register(ctx)
	if err != nil {
		return nil, err
	}

	env, err := c.call(ctx, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/friend-requests", sender.UserID),
		sender.Token, map[string]uint{"receiver_id": receiver.UserID})
	if err != nil {
		return nil, err
	}
	if env.Code != 0 {
		return nil, fmt.Errorf("send request: %d %s", env.Code, env.Message)
	}
	var fr struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &fr); err != nil {
		return nil, err
	}

	res := &roundResult{}
	path := fmt.Sprintf("/api/v1/users/%d/friend-requests/%d/accept", receiver.UserID, fr.ID)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < concurrency; i++ {
		g.Go(func() error {
			env, err := c.call(gctx, http.MethodPost, path, receiver.Token, nil)
			if err != nil {
				return err
			}
			switch env.Code {
			case 0:
				atomic.AddInt64(&res.accepted, 1)
			case http.StatusNotFound:
				atomic.AddInt64(&res.notFound, 1)
			default:
				atomic.AddInt64(&res.other, 1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res.took = time.Since(start)
	return res, nil
}

func runBench(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	c := &client{http: &http.Client{Timeout: timeout}, base: baseURL}

	fmt.Fprintln(out, "=== 好友申请并发接受测试 ===")
	fmt.Fprintf(out, "目标: %s 并发: %d 轮数: %d\n", baseURL, concurrency, rounds)

	if rounds <= 0 || concurrency <= 0 {
		return fmt.Errorf("rounds and concurrency must be positive")
	}

	var (
		failures int
		total    time.Duration
	)
	for i := 1; i <= rounds; i++ {
		res, err := c.round(cmd.Context())
		if err != nil {
			return fmt.Errorf("round %d: %w", i, err)
		}
		total += res.took
		if res.accepted != 1 || res.other != 0 {
			failures++
		}
		fmt.Fprintf(out, "第%d轮: 成功 %d 未找到 %d 其他 %d 耗时 %v\n",
			i, res.accepted, res.notFound, res.other, res.took)
	}

	fmt.Fprintf(out, "\n平均耗时: %v\n", total/time.Duration(rounds))
	if failures > 0 {
		return fmt.Errorf("%d round(s) did not accept exactly once", failures)
	}
	fmt.Fprintln(out, "所有轮次均只接受一次")
	return nil
}
