// Package proto is the wire contract between the applylog client and server:
// request/response messages, the applylog.v1.JobTracker service descriptor,
// and the JSON codec the service is carried with.
//
// Messages are plain Go structs. Both sides select the codec by content
// subtype (see CodecName), so no generated protobuf code is involved.
// Import the package as pb.
package proto
