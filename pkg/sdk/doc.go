// Package contentfinder embeds the contentfinder query engine in a Go program.
//
// The client talks to Redis directly and runs the same retrieval and
// relaxation pipeline as the HTTP service:
//
//	client, _ := contentfinder.New(ctx,
//	    contentfinder.WithRedis("localhost:6379", ""),
//	    contentfinder.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//
//	res, _ := client.Query(ctx, contentfinder.QueryRequest{
//	    Message: "show the accordion headline for ipad in Korea",
//	    Role:    "headline",
//	})
//	fmt.Println(res.Stage, len(res.Items))
package contentfinder
