// Package globalsearch is an in-process client for the federated record
// search: the same services the HTTP API serves, wired over RediSearch or an
// embedded bleve index.
//
// # Embedded
//
//	client, _ := globalsearch.New(ctx, globalsearch.WithEmbedded(""))
//	defer client.Close()
//	_, _ = client.SeedFile(ctx, "config/fixtures.yaml")
//
//	who := globalsearch.NewCaller("u1", globalsearch.RoleDispatcher, "")
//	env, _ := client.Search(ctx, who, globalsearch.SearchParams{Query: "ORD-2024"})
//
// # Redis
//
//	client, _ := globalsearch.New(ctx, globalsearch.WithRedis("localhost:6379", ""))
//	_, _ = client.Bootstrap(ctx)
//	sugg, _ := client.Suggest(ctx, who, "ord", globalsearch.Orders, 5)
package globalsearch
