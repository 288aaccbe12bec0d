// Package poc reconstructs H.264 Picture Order Count (POC) from the
// low-order bits carried in each slice header plus a running high-order
// count tracked across pictures.
//
// [Tracker] implements only pic_order_cnt_type 0; streams using type 1 or
// 2 are accepted by package h264's SPS parser but their POC is not
// computed here, and memory_management_control_operation 5 is not
// detected. These are documented limitations carried over from this
// package's reference implementation, not defects — see SPEC_FULL.md.
package poc
