// Package influxdb writes routing telemetry to InfluxDB v2.
//
// Three measurements are recorded:
//
//	av_route          tags destination_id, origin     field source_id
//	av_router_status  tag  router_id                  field online (1/0)
//	av_preset_recall  tags preset_id, status          fields completed, failed, duration_ms
//
// Points go through the client library's batching write API, sized by
// influxdb.batch_size and influxdb.flush_interval. A failed batch is
// reported to the SetOnError callback; the Write methods never block or
// return errors. Connect and HealthCheck ping the server.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	client.WriteRouteEvent("DISP1", "CAM1", "command", time.Now())
package influxdb
