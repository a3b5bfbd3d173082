// Package wire defines the gRPC contract between smokesignal-agent and
// smokesignal-server.
//
// There is no generated protobuf code. Messages are plain Go structs carried
// by a JSON codec (bytedance/sonic) registered under the "json" content
// subtype, and the SnapshotService descriptor is written by hand in the
// shape protoc-gen-go-grpc would emit:
//
//	service smokesignal.v1.SnapshotService {
//	  rpc Publish(PublishRequest) returns (PublishResponse);
//	}
//
// Clients select the codec per call with grpc.CallContentSubtype(CodecName);
// NewSnapshotServiceClient does that automatically.
package wire
